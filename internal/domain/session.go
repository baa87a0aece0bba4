package domain

import "strings"

const RoleAdmin = "admin"

// Session is the identity of the signed-in caller.
type Session struct {
	UserID ID     `json:"id" yaml:"id"`
	Email  string `json:"email" yaml:"email"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Role   string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Owner identifies who created a record. Either field may be empty.
type Owner struct {
	ID    ID
	Email string
}

// Owns reports whether the session owns a record with the given owner.
// A match on id or on case-insensitive email is sufficient.
func (s *Session) Owns(o Owner) bool {
	if s == nil {
		return false
	}
	if s.UserID != "" && SameID(s.UserID, o.ID) {
		return true
	}
	email := strings.TrimSpace(s.Email)
	if email == "" {
		return false
	}
	return strings.EqualFold(email, strings.TrimSpace(o.Email))
}

// IsAdmin reports whether the session has the admin role or uses the
// configured administrator email.
func (s *Session) IsAdmin(adminEmail string) bool {
	if s == nil {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(s.Role), RoleAdmin) {
		return true
	}
	return adminEmail != "" && strings.EqualFold(strings.TrimSpace(s.Email), adminEmail)
}
