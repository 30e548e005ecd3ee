package permalink

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent strips combining marks so accented characters slug to their base
// letter (é -> e) instead of being dropped.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a title into a URL-safe path segment: lower-cased,
// accents folded, non-alphanumeric runs collapsed to a single hyphen,
// leading and trailing hyphens trimmed.
func Slugify(s string) string {
	folded, _, err := transform.String(deaccent, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
