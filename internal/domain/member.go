package domain

import "strings"

const (
	MemberActive  = "active"
	MemberBlocked = "blocked"
)

type Member struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Status string `json:"status"`
}

func (m Member) RecordID() ID { return m.ID }

func (m Member) WithID(id ID) Member {
	m.ID = id
	return m
}

func (m Member) SearchFields() []string {
	return []string{m.Name, m.Handle, m.Email}
}

func (m Member) CategoryLabel() string { return "" }

func (m Member) OwnerRef() Owner {
	return Owner{ID: m.ID, Email: m.Email}
}

func (m Member) Validate() error {
	verr := NewValidationError()
	if strings.TrimSpace(m.Name) == "" {
		verr.Add("name", "name must not be empty")
	}
	if strings.TrimSpace(m.Email) == "" {
		verr.Add("email", "email must not be empty")
	}
	if s := m.Status; s != "" && s != MemberActive && s != MemberBlocked {
		verr.Add("status", "status must be active or blocked")
	}
	return verr.Err()
}

// HandleFromEmail derives an @handle from the local part of an email.
func HandleFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return ""
	}
	return "@" + strings.ToLower(local)
}
