package domain

import "time"

type User struct {
	ID        ID         `json:"id"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	FullName  string     `json:"fullName,omitempty"`
	Email     string     `json:"email"`
	Password  string     `json:"password,omitempty"`
	Role      string     `json:"role,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func (u User) RecordID() ID { return u.ID }

func (u User) WithID(id ID) User {
	u.ID = id
	return u
}

func (u User) SearchFields() []string {
	return []string{u.FullName, u.Email}
}

func (u User) CategoryLabel() string { return "" }

func (u User) OwnerRef() Owner {
	return Owner{ID: u.ID, Email: u.Email}
}

// Session returns the identity stored after a successful login.
func (u User) Session() *Session {
	return &Session{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.FullName,
		Role:   u.Role,
	}
}
