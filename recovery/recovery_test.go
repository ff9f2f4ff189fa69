package recovery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wudi/packlist/recovery"
)

func TestRecoveryStrategies(t *testing.T) {
	pageErr := errors.New("tesseract: empty image")
	loc := recovery.Location{Page: 2, Component: "ocr"}

	t.Run("StrictStrategy", func(t *testing.T) {
		s := recovery.NewStrictStrategy()
		if got := s.OnError(context.Background(), pageErr, loc); got != recovery.ActionFail {
			t.Fatalf("expected fail, got %v", got)
		}
	})

	t.Run("LenientStrategy", func(t *testing.T) {
		s := recovery.NewLenientStrategy()
		if got := s.OnError(context.Background(), pageErr, loc); got != recovery.ActionSkip {
			t.Fatalf("expected skip, got %v", got)
		}
		errs := s.Errors()
		if len(errs) != 1 {
			t.Fatalf("expected 1 recorded error, got %d", len(errs))
		}
		if !errors.Is(errs[0], pageErr) {
			t.Fatalf("recorded error does not wrap the page error: %v", errs[0])
		}
		if got := errs[0].Error(); got != "[ocr page 3]: tesseract: empty image" {
			t.Fatalf("unexpected message %q", got)
		}
	})

	t.Run("LenientStrategyCanceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := recovery.NewLenientStrategy()
		if got := s.OnError(ctx, pageErr, loc); got != recovery.ActionFail {
			t.Fatalf("expected fail once canceled, got %v", got)
		}
	})
}

func TestFromName(t *testing.T) {
	for name, want := range map[string]string{
		"":         "*recovery.StrictStrategy",
		"strict":   "*recovery.StrictStrategy",
		" Lenient": "*recovery.LenientStrategy",
	} {
		s, err := recovery.FromName(name)
		if err != nil {
			t.Fatalf("FromName(%q): %v", name, err)
		}
		switch s.(type) {
		case *recovery.StrictStrategy:
			if want != "*recovery.StrictStrategy" {
				t.Fatalf("FromName(%q) = strict, want %s", name, want)
			}
		case *recovery.LenientStrategy:
			if want != "*recovery.LenientStrategy" {
				t.Fatalf("FromName(%q) = lenient, want %s", name, want)
			}
		}
	}
	if _, err := recovery.FromName("yolo"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestFactoryBuildsFreshStrategies(t *testing.T) {
	f, err := recovery.FactoryFromName("lenient")
	if err != nil {
		t.Fatalf("FactoryFromName: %v", err)
	}
	first := f().(*recovery.LenientStrategy)
	first.OnError(context.Background(), errors.New("boom"), recovery.Location{Page: 0, Component: "ocr"})

	second := f().(*recovery.LenientStrategy)
	if first == second {
		t.Fatalf("factory returned the same strategy twice")
	}
	if n := len(second.Errors()); n != 0 {
		t.Fatalf("fresh strategy carries %d errors", n)
	}
	if _, err := recovery.FactoryFromName("optimistic"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
