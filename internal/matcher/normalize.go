// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package matcher

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize reduces a name to the form names are compared in: lower case,
// diacritics removed, hyphens and dots read as spaces, runs of whitespace
// collapsed.
func Normalize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)
	folded = strings.NewReplacer("-", " ", ".", " ").Replace(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Similarity returns the matching-blocks ratio of two already normalised
// names, from 0 (nothing in common) to 1 (identical).
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return m.Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
