package optimizer

import (
	"errors"
	"testing"
)

// fakeOptimizer is a test helper that implements the Optimizer interface.
type fakeOptimizer struct {
	name string
}

func (f *fakeOptimizer) Optimize(src []byte) ([]byte, error) { return src, nil }
func (f *fakeOptimizer) Name() string                        { return f.name }

// TestSelect tests strategy selection.
func TestSelect(t *testing.T) {
	t.Parallel()

	t.Run("builtin is always available", func(t *testing.T) {
		t.Parallel()
		opt, err := Select(NameBuiltin, Options{Precision: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opt.Name() != NameBuiltin {
			t.Errorf("expected %q, got %q", NameBuiltin, opt.Name())
		}
	})

	t.Run("auto prefers minify when compiled in", func(t *testing.T) {
		t.Parallel()
		opt, err := Select(NameAuto, Options{Precision: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := NameBuiltin
		if Available(NameMinify) {
			want = NameMinify
		}
		if opt.Name() != want {
			t.Errorf("expected %q, got %q", want, opt.Name())
		}
	})

	t.Run("empty name behaves like auto", func(t *testing.T) {
		t.Parallel()
		auto, err := Select(NameAuto, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		empty, err := Select("", Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if auto.Name() != empty.Name() {
			t.Errorf("expected %q, got %q", auto.Name(), empty.Name())
		}
	})

	t.Run("unknown name returns ErrUnknown", func(t *testing.T) {
		t.Parallel()
		_, err := Select("scour", Options{})
		if !errors.Is(err, ErrUnknown) {
			t.Errorf("expected ErrUnknown, got %v", err)
		}
	})

	t.Run("negative precision falls back to default", func(t *testing.T) {
		t.Parallel()
		opt, err := Select(NameBuiltin, Options{Precision: -1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, ok := opt.(*Builtin)
		if !ok {
			t.Fatalf("expected *Builtin, got %T", opt)
		}
		if b.precision != DefaultPrecision {
			t.Errorf("expected precision %d, got %d", DefaultPrecision, b.precision)
		}
	})

	t.Run("precision is capped", func(t *testing.T) {
		t.Parallel()
		opt, err := Select(NameBuiltin, Options{Precision: 99})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b := opt.(*Builtin); b.precision != MaxPrecision {
			t.Errorf("expected precision %d, got %d", MaxPrecision, b.precision)
		}
	})
}

// TestRegister tests that registered strategies become selectable.
func TestRegister(t *testing.T) {
	t.Parallel()

	// Only valid names are selectable, so register under a name that is
	// not compiled in by default and check it through Available.
	const name = "test-only"
	Register(name, func(Options) Optimizer { return &fakeOptimizer{name: name} })

	if !Available(name) {
		t.Fatalf("expected %q to be available", name)
	}
	found := false
	for _, n := range Names() {
		if n == name {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %q in Names(), got %v", name, Names())
	}
	if _, err := Select(name, Options{}); !errors.Is(err, ErrUnknown) {
		t.Errorf("expected ErrUnknown for unlisted strategy, got %v", err)
	}
}

// TestValidName tests strategy name validation.
func TestValidName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{NameAuto, NameMinify, NameBuiltin} {
		if !ValidName(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}
	for _, name := range []string{"", "scour", "AUTO"} {
		if ValidName(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}
