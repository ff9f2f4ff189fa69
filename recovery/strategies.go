package recovery

import (
	"fmt"
	"sync"
)

// StrictStrategy implements a fail-fast recovery strategy: the first failed
// page turns the whole document into an error result.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(ctx Context, err error, location Location) Action {
	return ActionFail
}

// LenientStrategy implements a best-effort recovery strategy. Failed pages are
// skipped and their errors accumulated; pages that already succeeded keep
// their records.
type LenientStrategy struct {
	mu     sync.Mutex
	errors []error
}

func NewLenientStrategy() *LenientStrategy {
	return &LenientStrategy{}
}

func (s *LenientStrategy) OnError(ctx Context, err error, location Location) Action {
	select {
	case <-ctx.Done():
		return ActionFail
	default:
	}
	s.mu.Lock()
	s.errors = append(s.errors, fmt.Errorf("[%s]: %w", location, err))
	s.mu.Unlock()
	return ActionSkip
}

// Errors returns the errors seen so far.
func (s *LenientStrategy) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errors...)
}
