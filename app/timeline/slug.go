package timeline

import (
	"regexp"
	"strings"
)

// slugPattern matches every maximal run of the punctuation and whitespace
// characters that are unsafe in filter identifiers and CSS class names.
var slugPattern = regexp.MustCompile("[\\s~!@$%^&*()+=,./';:\"?><\\[\\] \\\\{}|`#]+")

// Slugify converts label text into a filter/CSS-safe identifier: surrounding
// whitespace is trimmed, then each run of unsafe characters collapses to a
// single underscore. The result is stable for equal input and idempotent for
// text already in slug form.
func Slugify(text string) string {
	return slugPattern.ReplaceAllString(strings.TrimSpace(text), "_")
}
