package domain

import (
	"strings"
	"time"
)

const (
	StatusPublic  = "public"
	StatusPrivate = "private"
)

// isoMillis matches JavaScript's Date.toISOString, which the store's
// createdAt values use.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type Post struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title"`
	Date        string     `json:"date,omitempty"`
	Desc        string     `json:"desc,omitempty"`
	Content     string     `json:"content,omitempty"`
	Category    string     `json:"category,omitempty"`
	Image       string     `json:"image,omitempty"`
	Status      string     `json:"status,omitempty"`
	AuthorID    ID         `json:"authorId,omitempty"`
	AuthorEmail string     `json:"authorEmail,omitempty"`
	Likes       int        `json:"likes,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

func (p Post) RecordID() ID { return p.ID }

func (p Post) WithID(id ID) Post {
	p.ID = id
	return p
}

func (p Post) SearchFields() []string {
	return []string{p.Title, p.Desc, p.Content}
}

func (p Post) CategoryLabel() string { return p.Category }

func (p Post) OwnerRef() Owner {
	return Owner{ID: p.AuthorID, Email: p.AuthorEmail}
}

// Body returns the content, falling back to the short description.
func (p Post) Body() string {
	if strings.TrimSpace(p.Content) != "" {
		return p.Content
	}
	return p.Desc
}

// EffectiveStatus treats an unset status as public.
func (p Post) EffectiveStatus() string {
	if p.Status == "" {
		return StatusPublic
	}
	return p.Status
}

// SortKey is the timestamp posts are ordered by, newest first.
func (p Post) SortKey() string {
	if p.CreatedAt != nil && !p.CreatedAt.IsZero() {
		return p.CreatedAt.UTC().Format(isoMillis)
	}
	return p.Date
}

func (p Post) Validate() error {
	verr := NewValidationError()
	if strings.TrimSpace(p.Title) == "" {
		verr.Add("title", "title must not be empty")
	}
	if strings.TrimSpace(p.Body()) == "" {
		verr.Add("content", "content must not be empty")
	}
	if s := p.Status; s != "" && s != StatusPublic && s != StatusPrivate {
		verr.Add("status", "status must be public or private")
	}
	return verr.Err()
}
