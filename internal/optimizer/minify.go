//go:build !nominify

package optimizer

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/svg"
)

const (
	svgMediaType = "image/svg+xml"
	cssMediaType = "text/css"
)

func init() {
	Register(NameMinify, func(opts Options) Optimizer { return NewMinify(opts) })
}

// Minify delegates to github.com/tdewolff/minify/v2. It keeps ids, viewBox
// and every attribute it does not recognize as a default value.
type Minify struct {
	m *minify.M
}

// NewMinify creates a Minify optimizer.
func NewMinify(opts Options) *Minify {
	// tdewolff counts significant digits rather than decimals; three extra
	// digits cover the integer part of typical viewBox coordinates.
	digits := opts.Precision + 3

	m := minify.New()
	m.Add(svgMediaType, &svg.Minifier{Precision: digits})
	m.Add(cssMediaType, &css.Minifier{Precision: digits})
	return &Minify{m: m}
}

// Name returns "minify".
func (o *Minify) Name() string {
	return NameMinify
}

// Optimize implements Optimizer.
func (o *Minify) Optimize(src []byte) ([]byte, error) {
	if err := checkDocument(src); err != nil {
		return nil, err
	}
	out, err := o.m.Bytes(svgMediaType, src)
	if err != nil {
		return nil, fmt.Errorf("minify: %w", err)
	}
	return out, nil
}
