package listing

import (
	"blog_admin/internal/domain"
	"blog_admin/internal/search"
)

// Filter selects the visible subset of a collection.
type Filter struct {
	Search   string
	Category string
	MineOnly bool
}

type predicate func(rec domain.Record) bool

func (f Filter) compile(session *domain.Session) predicate {
	matcher := search.NewMatcher(f.Search)

	return func(rec domain.Record) bool {
		if f.Category != "" && rec.CategoryLabel() != f.Category {
			return false
		}
		if f.MineOnly && !session.Owns(rec.OwnerRef()) {
			return false
		}
		return matcher.Match(rec.SearchFields()...)
	}
}

// Apply returns the records of items that pass the filter.
func Apply[T domain.Record](items []T, f Filter, session *domain.Session) []T {
	keep := f.compile(session)

	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
