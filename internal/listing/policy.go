package listing

import "blog_admin/internal/domain"

// Policy decides whether session may write a record owned by owner.
type Policy func(session *domain.Session, owner domain.Owner, adminEmail string) bool

// Anyone allows every caller, signed in or not.
func Anyone(*domain.Session, domain.Owner, string) bool {
	return true
}

func SignedIn(session *domain.Session, _ domain.Owner, _ string) bool {
	return session != nil
}

func AdminOnly(session *domain.Session, _ domain.Owner, adminEmail string) bool {
	return session.IsAdmin(adminEmail)
}

func OwnerOrAdmin(session *domain.Session, owner domain.Owner, adminEmail string) bool {
	return session.IsAdmin(adminEmail) || session.Owns(owner)
}
