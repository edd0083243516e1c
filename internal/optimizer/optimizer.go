package optimizer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Strategy names accepted by Select.
const (
	// NameAuto selects the preferred external optimizer when available.
	NameAuto = "auto"

	// NameMinify is the tdewolff/minify based optimizer.
	NameMinify = "minify"

	// NameBuiltin is the regular-expression based fallback optimizer.
	NameBuiltin = "builtin"
)

// DefaultPrecision is the number of decimal places kept for numeric values.
const DefaultPrecision = 3

// MaxPrecision is the largest accepted precision.
const MaxPrecision = 10

var (
	// ErrUnavailable is returned when a strategy is known but not compiled in.
	ErrUnavailable = errors.New("optimizer not available in this build")

	// ErrUnknown is returned for strategy names svgmin does not know about.
	ErrUnknown = errors.New("unknown optimizer")
)

// Optimizer rewrites an SVG document into a smaller equivalent.
// Implementations must be safe for concurrent use.
type Optimizer interface {
	// Optimize returns the optimized document. src is never modified.
	Optimize(src []byte) ([]byte, error)

	// Name returns the strategy name for logging and reports.
	Name() string
}

// Options configures an optimizer.
type Options struct {
	// Precision is the number of decimal places kept for numeric values.
	Precision int
}

// Factory creates an Optimizer from options.
type Factory func(opts Options) Optimizer

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		NameBuiltin: func(opts Options) Optimizer { return NewBuiltin(opts) },
	}
)

// Register makes a strategy available under name.
// It is called from init functions of optional strategies.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Available reports whether the named strategy is compiled in.
func Available(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// Names returns the names of all compiled-in strategies, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidName reports whether name is a strategy svgmin understands,
// regardless of whether it is compiled in.
func ValidName(name string) bool {
	switch name {
	case NameAuto, NameMinify, NameBuiltin:
		return true
	default:
		return false
	}
}

// Select returns the optimizer for the given strategy name.
// NameAuto resolves to NameMinify when it is compiled in and to NameBuiltin
// otherwise. Negative precision is replaced with DefaultPrecision.
func Select(name string, opts Options) (Optimizer, error) {
	if opts.Precision < 0 {
		opts.Precision = DefaultPrecision
	}
	if opts.Precision > MaxPrecision {
		opts.Precision = MaxPrecision
	}

	if name == "" || name == NameAuto {
		name = NameBuiltin
		if Available(NameMinify) {
			name = NameMinify
		}
	}
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, name)
	}
	return factory(opts), nil
}
