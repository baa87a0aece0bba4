package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
)

type UserStore interface {
	List(ctx context.Context, q remote.Query) ([]domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
}

type MemberStore interface {
	Create(ctx context.Context, member domain.Member) (domain.Member, error)
}

type PostStore interface {
	Get(ctx context.Context, id domain.ID) (domain.Post, error)
}

type CommentStore interface {
	List(ctx context.Context, q remote.Query) ([]domain.Comment, error)
	Create(ctx context.Context, c domain.Comment) (domain.Comment, error)
	Patch(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Comment, error)
	Delete(ctx context.Context, id domain.ID) error
}

type SessionStore interface {
	Current() *domain.Session
	Set(s *domain.Session) error
	Clear() error
}

type Publisher interface {
	Publish(ctx context.Context, change domain.Change) error
}
