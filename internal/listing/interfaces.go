package listing

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
)

// Remote is the store collection a controller mirrors.
type Remote[T any] interface {
	List(ctx context.Context, q remote.Query) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Patch(ctx context.Context, id domain.ID, patch domain.Patch) (T, error)
	Delete(ctx context.Context, id domain.ID) error
}

// SessionProvider returns the signed-in identity, or nil.
type SessionProvider interface {
	Current() *domain.Session
}

type Publisher interface {
	Publish(ctx context.Context, change domain.Change) error
}
