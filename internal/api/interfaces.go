package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"

	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
	"blog_admin/internal/storage/postgres"
)

type RecordStore interface {
	List(ctx context.Context, collection string, q remote.Query) ([]json.RawMessage, int, error)
	Get(ctx context.Context, collection string, id domain.ID) (json.RawMessage, error)
	Insert(ctx context.Context, collection string, body json.RawMessage) (json.RawMessage, error)
	Patch(ctx context.Context, collection string, id domain.ID, body json.RawMessage) (json.RawMessage, error)
	Delete(ctx context.Context, collection string, id domain.ID, dependents []postgres.Dependent) error
	DeleteMany(ctx context.Context, collection string, ids []domain.ID) (int64, error)
	Collections(ctx context.Context) ([]postgres.CollectionInfo, error)
}
