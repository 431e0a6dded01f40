package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// FoldSearch normalizes a string for accent-insensitive matching:
// Unicode decomposition, diacritics stripped, case folded.
// "José" and "jose" normalize to the same value.
func FoldSearch(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// ContainsFold reports whether needle is an accent-insensitive,
// case-insensitive substring of haystack.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(FoldSearch(haystack), FoldSearch(needle))
}
