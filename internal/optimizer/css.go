package optimizer

import (
	"regexp"
	"strings"
)

var (
	cssCommentRe     = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssPunctuationRe = regexp.MustCompile(`\s*([{}:;,>])\s*`)
	cssTrailingSemi  = regexp.MustCompile(`;+}`)
	keyframesRe      = regexp.MustCompile(`@(?:-[a-zA-Z]+-)?keyframes\b`)
)

// MinifyCSS removes comments and redundant whitespace from a stylesheet.
// @keyframes blocks (including vendor-prefixed ones) are copied verbatim
// apart from their comments.
func MinifyCSS(css string) string {
	var sb strings.Builder
	sb.Grow(len(css))

	rest := cssCommentRe.ReplaceAllString(css, "")
	for {
		loc := keyframesRe.FindStringIndex(rest)
		if loc == nil {
			sb.WriteString(minifyRules(rest))
			break
		}
		end := blockEnd(rest, loc[0])
		sb.WriteString(minifyRules(rest[:loc[0]]))
		sb.WriteString(rest[loc[0]:end])
		rest = rest[end:]
	}
	return sb.String()
}

// blockEnd returns the index just past the brace block that starts at or
// after from. Unbalanced input runs to the end of s.
func blockEnd(s string, from int) int {
	open := strings.IndexByte(s[from:], '{')
	if open < 0 {
		return len(s)
	}
	depth := 0
	for i := from + open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

// minifyRules minifies plain CSS rules.
func minifyRules(css string) string {
	css = cssCommentRe.ReplaceAllString(css, "")
	css = whitespaceRe.ReplaceAllString(css, " ")
	css = cssPunctuationRe.ReplaceAllString(css, "$1")
	css = cssTrailingSemi.ReplaceAllString(css, "}")
	return strings.TrimSpace(css)
}
