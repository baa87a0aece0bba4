package listing

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"blog_admin/internal/domain"
	"blog_admin/internal/search"
)

// Kind describes the per-collection rules a Controller applies.
type Kind[T any] struct {
	// Name is the collection name used in logs and change events.
	Name string
	// Sort orders a freshly loaded collection in place.
	Sort func(items []T)
	// Validate is called before any write with the current local records.
	Validate func(rec T, existing []T) error
	// Prepare fills server-side defaults on a new record.
	Prepare func(rec T, session *domain.Session, now time.Time) T
	// Append places new records at the end instead of the front.
	Append bool

	CreatePolicy Policy
	WritePolicy  Policy
}

func PostKind() Kind[domain.Post] {
	return Kind[domain.Post]{
		Name: "posts",
		Sort: SortPosts,
		Validate: func(p domain.Post, _ []domain.Post) error {
			return p.Validate()
		},
		Prepare: func(p domain.Post, s *domain.Session, now time.Time) domain.Post {
			if s != nil && p.AuthorID == "" && p.AuthorEmail == "" {
				p.AuthorID = s.UserID
				p.AuthorEmail = s.Email
			}
			if p.CreatedAt == nil {
				ts := now.UTC()
				p.CreatedAt = &ts
			}
			if p.Date == "" {
				p.Date = now.Format(time.DateOnly)
			}
			if p.Status == "" {
				p.Status = domain.StatusPublic
			}
			p.Title = strings.TrimSpace(p.Title)
			return p
		},
		CreatePolicy: SignedIn,
		WritePolicy:  OwnerOrAdmin,
	}
}

func CategoryKind() Kind[domain.Category] {
	return Kind[domain.Category]{
		Name: "categories",
		Validate: func(c domain.Category, existing []domain.Category) error {
			return c.Validate(existing)
		},
		Prepare: func(c domain.Category, _ *domain.Session, _ time.Time) domain.Category {
			c.Name = strings.TrimSpace(c.Name)
			return c
		},
		Append:       true,
		CreatePolicy: AdminOnly,
		WritePolicy:  AdminOnly,
	}
}

func MemberKind() Kind[domain.Member] {
	return Kind[domain.Member]{
		Name: "members",
		Sort: SortMembers,
		Validate: func(m domain.Member, _ []domain.Member) error {
			return m.Validate()
		},
		Prepare: func(m domain.Member, _ *domain.Session, _ time.Time) domain.Member {
			if m.Status == "" {
				m.Status = domain.MemberActive
			}
			if m.Handle == "" {
				m.Handle = domain.HandleFromEmail(m.Email)
			}
			return m
		},
		CreatePolicy: AdminOnly,
		WritePolicy:  AdminOnly,
	}
}

func CommentKind() Kind[domain.Comment] {
	return Kind[domain.Comment]{
		Name: "comments",
		Sort: SortComments,
		Validate: func(c domain.Comment, _ []domain.Comment) error {
			return c.Validate()
		},
		Prepare: func(c domain.Comment, s *domain.Session, now time.Time) domain.Comment {
			if s != nil && c.UserID == "" && c.UserEmail == "" {
				c.UserID = s.UserID
				c.UserEmail = s.Email
			}
			if c.CreatedAt == nil {
				ts := now.UTC()
				c.CreatedAt = &ts
			}
			c.Text = strings.TrimSpace(c.Text)
			return c
		},
		Append:       true,
		CreatePolicy: SignedIn,
		WritePolicy:  OwnerOrAdmin,
	}
}

// SortPosts orders posts newest first: by creation time (or date), then by
// numeric id, then by id text.
func SortPosts(posts []domain.Post) {
	slices.SortStableFunc(posts, func(a, b domain.Post) int {
		if c := cmp.Compare(b.SortKey(), a.SortKey()); c != 0 {
			return c
		}
		ia, okA := a.ID.Int()
		ib, okB := b.ID.Int()
		if okA && okB {
			return cmp.Compare(ib, ia)
		}
		return cmp.Compare(b.ID.String(), a.ID.String())
	})
}

// SortMembers orders members by name, ignoring case and diacritics.
func SortMembers(members []domain.Member) {
	col := search.NewCollator()
	slices.SortStableFunc(members, func(a, b domain.Member) int {
		return col.Compare(a.Name, b.Name)
	})
}

// SortComments orders comments oldest first.
func SortComments(comments []domain.Comment) {
	slices.SortStableFunc(comments, func(a, b domain.Comment) int {
		var ta, tb time.Time
		if a.CreatedAt != nil {
			ta = *a.CreatedAt
		}
		if b.CreatedAt != nil {
			tb = *b.CreatedAt
		}
		return ta.Compare(tb)
	})
}
