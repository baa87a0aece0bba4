package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// CollectionInfo summarizes one collection of the record store.
type CollectionInfo struct {
	Name          string    `db:"collection" json:"name"`
	Count         int       `db:"count" json:"count"`
	LastUpdatedAt time.Time `db:"last_updated_at" json:"lastUpdatedAt"`
}

func (s *RecordStore) Collections(ctx context.Context) ([]CollectionInfo, error) {
	query := `
		SELECT collection, COUNT(*) AS count, MAX(updated_at) AS last_updated_at
		FROM records
		GROUP BY collection
		ORDER BY collection`

	var infos []CollectionInfo
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &infos, query)
	if err != nil {
		return nil, err
	}
	if infos == nil {
		infos = []CollectionInfo{}
	}
	return infos, nil
}
