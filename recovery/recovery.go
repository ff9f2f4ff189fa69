package recovery

import (
	"fmt"
	"strings"
)

// Strategy decides what happens when a page of a document cannot be
// rasterized or recognized.
type Strategy interface {
	OnError(ctx Context, err error, location Location) Action
}

type Location struct {
	// Page is the zero-based page index, -1 when the failure is not tied to a
	// page.
	Page      int
	Component string
}

func (l Location) String() string {
	if l.Page < 0 {
		return l.Component
	}
	return fmt.Sprintf("%s page %d", l.Component, l.Page+1)
}

type Action int

const (
	ActionFail Action = iota
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionFail:
		return "fail"
	case ActionSkip:
		return "skip"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

type Context interface{ Done() <-chan struct{} }

// Strategy names accepted by FromName.
const (
	NameStrict  = "strict"
	NameLenient = "lenient"
)

// Factory builds the strategy for one document. Strategies that accumulate
// state, like LenientStrategy, must not be shared between documents.
type Factory func() Strategy

// FactoryFromName returns the factory registered under name. The empty string
// selects the strict strategy.
func FactoryFromName(name string) (Factory, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameStrict:
		return func() Strategy { return NewStrictStrategy() }, nil
	case NameLenient:
		return func() Strategy { return NewLenientStrategy() }, nil
	default:
		return nil, fmt.Errorf("unknown recovery strategy %q", name)
	}
}

// FromName returns a new strategy registered under name.
func FromName(name string) (Strategy, error) {
	f, err := FactoryFromName(name)
	if err != nil {
		return nil, err
	}
	return f(), nil
}
