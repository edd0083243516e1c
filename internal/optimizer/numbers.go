package optimizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// plainNumberRe matches a complete SVG number with optional sign and exponent.
	plainNumberRe = regexp.MustCompile(`^[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?$`)

	// numberTokenRe finds numbers embedded in path data and point lists.
	numberTokenRe = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

	whitespaceRe   = regexp.MustCompile(`\s+`)
	pathCommandRe  = regexp.MustCompile(`\s*([MLHVCSQTAZmlhvcsqtaz])\s*`)
	numericAttrRe  = regexp.MustCompile(`(\s)(x|y|width|height|cx|cy|r|rx|ry|x1|y1|x2|y2|opacity|stroke-width)=("[^"]*"|'[^']*')`)
	pathDataAttrRe = regexp.MustCompile(`(\s)(d)=("[^"]*"|'[^']*')`)
	pointsAttrRe   = regexp.MustCompile(`(\s)(points)=("[^"]*"|'[^']*')`)
)

// FormatNumber rounds value to precision decimal places and drops trailing
// zeros. Values that are not plain numbers (percentages, keywords, lengths
// with units) are returned unchanged, as is any rewrite that would be longer
// than the input.
func FormatNumber(value string, precision int) string {
	if !plainNumberRe.MatchString(value) {
		return value
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return value
	}

	out := strconv.FormatFloat(f, 'f', precision, 64)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(out, "0")
		out = strings.TrimSuffix(out, ".")
	}
	if out == "-0" {
		out = "0"
	}
	if len(out) > len(value) {
		return value
	}
	return out
}

// roundNumbers rounds every decimal number in s. Integers are left alone so
// arc flags and compact integer runs keep their meaning. A rounded number
// that lost its decimal point is kept as-is when the next character is a
// '.', because "1.0.5" would otherwise read back as "1.5".
func roundNumbers(s string, precision int) string {
	matches := numberTokenRe.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		token := s[start:end]
		sb.WriteString(s[last:start])
		last = end

		if !strings.Contains(token, ".") {
			sb.WriteString(token)
			continue
		}
		rounded := FormatNumber(token, precision)
		if end < len(s) && s[end] == '.' && !strings.Contains(rounded, ".") {
			rounded = token
		}
		if lostSign(token, rounded) && start > 0 && isNumberByte(s[start-1]) {
			rounded = token
		}
		sb.WriteString(rounded)
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// lostSign reports whether rounding dropped the sign that separated token
// from the number before it.
func lostSign(token, rounded string) bool {
	signed := token[0] == '-' || token[0] == '+'
	return signed && rounded[0] != '-'
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.'
}

// OptimizePathData compacts the value of a path "d" attribute.
func OptimizePathData(d string, precision int) string {
	d = whitespaceRe.ReplaceAllString(d, " ")
	d = pathCommandRe.ReplaceAllString(d, "$1")
	d = strings.TrimSpace(d)
	return roundNumbers(d, precision)
}

// OptimizePoints compacts the value of a polygon or polyline "points" attribute.
func OptimizePoints(points string, precision int) string {
	points = strings.TrimSpace(whitespaceRe.ReplaceAllString(points, " "))
	return roundNumbers(points, precision)
}

// rewriteAttrs applies fn to the value of every attribute matched by re.
// re must capture the leading whitespace, the name and the quoted value.
func rewriteAttrs(re *regexp.Regexp, s string, fn func(name, value string) string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		sub := re.FindStringSubmatch(m)
		lead, name, quoted := sub[1], sub[2], sub[3]
		q := quoted[:1]
		value := quoted[1 : len(quoted)-1]
		return lead + name + "=" + q + fn(name, value) + q
	})
}

// optimizeNumbers rewrites path data, point lists and numeric attributes.
func optimizeNumbers(s string, precision int) string {
	s = rewriteAttrs(pathDataAttrRe, s, func(_, v string) string {
		return OptimizePathData(v, precision)
	})
	s = rewriteAttrs(pointsAttrRe, s, func(_, v string) string {
		return OptimizePoints(v, precision)
	})
	return rewriteAttrs(numericAttrRe, s, func(_, v string) string {
		return FormatNumber(v, precision)
	})
}
