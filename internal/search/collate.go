package search

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator orders names the way the member list does: Vietnamese rules,
// case and diacritics ignored. A Collator is not safe for concurrent use.
type Collator struct {
	c *collate.Collator
}

func NewCollator() *Collator {
	return &Collator{
		c: collate.New(language.Vietnamese, collate.IgnoreCase, collate.IgnoreDiacritics),
	}
}

// Compare returns -1, 0 or 1.
func (c *Collator) Compare(a, b string) int {
	return c.c.CompareString(a, b)
}
