package domain

import (
	"strings"
	"time"
)

type Comment struct {
	ID        ID         `json:"id"`
	PostID    ID         `json:"postId"`
	UserID    ID         `json:"userId,omitempty"`
	UserEmail string     `json:"userEmail,omitempty"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (c Comment) RecordID() ID { return c.ID }

func (c Comment) WithID(id ID) Comment {
	c.ID = id
	return c
}

func (c Comment) SearchFields() []string { return []string{c.Text} }

func (c Comment) CategoryLabel() string { return "" }

func (c Comment) OwnerRef() Owner {
	return Owner{ID: c.UserID, Email: c.UserEmail}
}

func (c Comment) Validate() error {
	verr := NewValidationError()
	if strings.TrimSpace(c.Text) == "" {
		verr.Add("text", "comment must not be empty")
	}
	if c.PostID == "" {
		verr.Add("postId", "comment must belong to a post")
	}
	return verr.Err()
}
