package optimizer

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNotSVG is returned when the input has no <svg> element.
	ErrNotSVG = errors.New("input is not an SVG document")

	// ErrBinary is returned when the input contains NUL bytes.
	ErrBinary = errors.New("input contains binary data")
)

var (
	xmlCommentRe      = regexp.MustCompile(`(?s)<!--.*?-->`)
	metadataEmptyRe   = regexp.MustCompile(`(?i)<metadata\b[^>]*/>`)
	metadataElementRe = regexp.MustCompile(`(?is)<metadata\b[^>]*>.*?</metadata\s*>`)
	styleElementRe    = regexp.MustCompile(`(?is)<style(\s[^>]*[^/>]|\s)?>(.*?)</style\s*>`)
	cdataRe           = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*)\]\]>\s*$`)
	interTagSpaceRe   = regexp.MustCompile(`>\s+<`)
	svgOpenTagRe      = regexp.MustCompile(`(?i)<svg[\s>/]`)
)

// Builtin is the regular-expression based optimizer. It applies, in order:
// comment stripping, metadata removal, stylesheet minification, numeric
// precision reduction and whitespace collapsing. Running it on its own
// output returns the same bytes.
type Builtin struct {
	precision int
}

// NewBuiltin creates a Builtin optimizer.
func NewBuiltin(opts Options) *Builtin {
	return &Builtin{precision: opts.Precision}
}

// Name returns "builtin".
func (b *Builtin) Name() string {
	return NameBuiltin
}

// Optimize implements Optimizer.
func (b *Builtin) Optimize(src []byte) ([]byte, error) {
	if err := checkDocument(src); err != nil {
		return nil, err
	}

	s := string(src)
	s = xmlCommentRe.ReplaceAllString(s, "")
	s = stripMetadata(s)

	var styles []string
	s, styles = protectStyles(s)

	s = optimizeNumbers(s, b.precision)
	s = collapseWhitespace(s)

	return []byte(restoreStyles(s, styles)), nil
}

// checkDocument rejects input that cannot be an SVG text document.
func checkDocument(src []byte) error {
	if bytes.IndexByte(src, 0) >= 0 {
		return ErrBinary
	}
	if !svgOpenTagRe.Match(src) {
		return ErrNotSVG
	}
	return nil
}

func stripMetadata(s string) string {
	s = metadataEmptyRe.ReplaceAllString(s, "")
	return metadataElementRe.ReplaceAllString(s, "")
}

// protectStyles minifies every <style> element and replaces its contents with
// a NUL-delimited placeholder so later passes leave the stylesheet alone.
// Self-closing <style/> tags never match styleElementRe.
func protectStyles(s string) (string, []string) {
	var styles []string
	out := styleElementRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := styleElementRe.FindStringSubmatch(m)
		attrs, body := sub[1], sub[2]

		if c := cdataRe.FindStringSubmatch(body); c != nil {
			body = "<![CDATA[" + MinifyCSS(c[1]) + "]]>"
		} else {
			body = MinifyCSS(body)
		}

		p := placeholder(len(styles))
		styles = append(styles, body)
		return "<style" + attrs + ">" + p + "</style>"
	})
	return out, styles
}

func restoreStyles(s string, styles []string) string {
	for i, body := range styles {
		s = strings.Replace(s, placeholder(i), body, 1)
	}
	return s
}

func placeholder(i int) string {
	return "\x00" + strconv.Itoa(i) + "\x00"
}

// collapseWhitespace removes whitespace between tags, trims every line and
// drops blank lines.
func collapseWhitespace(s string) string {
	s = interTagSpaceRe.ReplaceAllString(s, "><")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
