// Package ids mints and validates ztlctl's permanent node identifiers.
package ids

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// nonWordRegex matches any rune that is not a letter, digit, or whitespace,
// after NFKC normalization and lowercasing.
var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// whitespaceRegex collapses runs of whitespace to a single space.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeTitle reduces a title to the canonical form used as input to the
// content-hash. The pipeline is: NFKC normalize, lowercase, drop non-word
// characters, collapse whitespace, trim. It is stable: the same title always
// normalizes to the same string regardless of surrounding punctuation or case.
func NormalizeTitle(title string) string {
	normalized := norm.NFKC.String(title)
	lowered := strings.Map(unicode.ToLower, normalized)
	stripped := nonWordRegex.ReplaceAllString(lowered, "")
	collapsed := whitespaceRegex.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(collapsed)
}
