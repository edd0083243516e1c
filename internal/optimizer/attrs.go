package optimizer

import (
	"html"
	"regexp"
	"sort"
	"strings"
)

// preservedAttrRe matches the attributes stylesheets and scripts refer to.
var preservedAttrRe = regexp.MustCompile(`(?:^|\s)(id|class|data-[\w.:-]+|aria-[\w-]+)\s*=\s*("[^"]*"|'[^']*')`)

// PreservedAttributes returns the id, class, data-* and aria-* attributes of
// an SVG document as "name=value" keys. Attributes inside comments and
// <metadata> elements are ignored since both are removed by optimization.
// Values are entity-decoded and whitespace-normalized so that quoting and
// spacing differences between optimizers do not count as a change.
func PreservedAttributes(src []byte) map[string]struct{} {
	s := xmlCommentRe.ReplaceAllString(string(src), "")
	s = stripMetadata(s)

	attrs := make(map[string]struct{})
	for _, m := range preservedAttrRe.FindAllStringSubmatch(s, -1) {
		attrs[attrKey(m[1], m[2])] = struct{}{}
	}
	return attrs
}

// Missing returns the preserved attributes of src that do not appear in out,
// sorted. An empty result means optimization kept every attribute.
func Missing(src, out []byte) []string {
	before := PreservedAttributes(src)
	after := PreservedAttributes(out)

	var missing []string
	for key := range before {
		if _, ok := after[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

func attrKey(name, quoted string) string {
	value := html.UnescapeString(quoted[1 : len(quoted)-1])
	value = strings.Join(strings.Fields(value), " ")
	return name + "=" + value
}
