package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"blog_admin/internal/domain"
)

func TestSortPosts(t *testing.T) {
	t1 := time.Date(2023, 9, 25, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(500 * time.Millisecond)

	posts := []domain.Post{
		{ID: "1", Date: "2023-09-20"},
		{ID: "2", CreatedAt: &t1},
		{ID: "3", CreatedAt: &t2},
		{ID: "10", Date: "2023-09-20"},
		{ID: "b", Date: "2023-09-21"},
		{ID: "a", Date: "2023-09-21"},
	}

	SortPosts(posts)

	assert.Equal(t, []domain.ID{"3", "2", "b", "a", "10", "1"}, ids(posts))
}

func TestSortMembers(t *testing.T) {
	members := []domain.Member{{ID: "1", Name: "Yến"}, {ID: "2", Name: "an"}, {ID: "3", Name: "Bình"}}

	SortMembers(members)

	assert.Equal(t, "an", members[0].Name)
	assert.Equal(t, "Bình", members[1].Name)
	assert.Equal(t, "Yến", members[2].Name)
}

func TestSortComments(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	comments := []domain.Comment{{ID: "late", CreatedAt: &late}, {ID: "early", CreatedAt: &early}}

	SortComments(comments)

	assert.Equal(t, domain.ID("early"), comments[0].ID)
}

func TestPostKind_Prepare(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	session := &domain.Session{UserID: "42", Email: "me@blog.dev"}

	p := PostKind().Prepare(domain.Post{Title: "  Hello  ", Content: "x"}, session, now)

	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, domain.ID("42"), p.AuthorID)
	assert.Equal(t, "me@blog.dev", p.AuthorEmail)
	assert.Equal(t, "2024-05-06", p.Date)
	assert.Equal(t, domain.StatusPublic, p.Status)
	assert.Equal(t, now, *p.CreatedAt)
}

func TestMemberKind_Prepare(t *testing.T) {
	m := MemberKind().Prepare(domain.Member{Name: "Jane", Email: "jane@blog.dev"}, nil, time.Now())

	assert.Equal(t, domain.MemberActive, m.Status)
	assert.Equal(t, "@jane", m.Handle)
}
