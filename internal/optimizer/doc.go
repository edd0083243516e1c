// Package optimizer provides the SVG text optimizers used by svgmin.
//
// Two strategies are available:
//   - minify: delegates to github.com/tdewolff/minify/v2 with conservative
//     settings. It is compiled in unless the nominify build tag is set.
//   - builtin: an ordered sequence of text rewrites (comment stripping,
//     metadata removal, CSS minification, numeric precision reduction and
//     whitespace collapsing) implemented with regular expressions.
//
// Both strategies are pure functions from input bytes to output bytes and
// never remove id, class, aria-* or data-* attributes. The "auto" strategy
// picks minify when it is compiled in and silently falls back to builtin.
//
// # Usage
//
//	opt, err := optimizer.Select(optimizer.NameAuto, optimizer.Options{Precision: 3})
//	if err != nil {
//	    return err
//	}
//	out, err := opt.Optimize(src)
package optimizer
