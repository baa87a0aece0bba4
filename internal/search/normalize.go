// Package search implements the text matching used by collection filters.
package search

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMark matches the Combining Diacritical Marks block (U+0300..U+036F).
var combiningMark = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
})

// Normalize decomposes s (NFD), strips combining diacritical marks and
// lowercases the result, so "Café" and "cafe" normalize alike.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(combiningMark))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Matcher is a prepared query.
type Matcher struct {
	needle string
}

func NewMatcher(query string) Matcher {
	return Matcher{needle: Normalize(strings.TrimSpace(query))}
}

// Empty reports whether the query matches everything.
func (m Matcher) Empty() bool {
	return m.needle == ""
}

// Match reports whether any field contains the query.
func (m Matcher) Match(fields ...string) bool {
	if m.needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Normalize(f), m.needle) {
			return true
		}
	}
	return false
}
