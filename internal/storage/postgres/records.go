package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
)

const uniqueViolation = "23505"

// Dependent names records of another collection that point at a parent
// through a field, e.g. comments.postId.
type Dependent struct {
	Collection string
	Field      string
}

type storedRecord struct {
	ID        string         `db:"id"`
	Data      types.JSONText `db:"data"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type RecordStore struct {
	db *sqlx.DB
	tm *TransactionManager
}

func NewRecordStore(db *sqlx.DB, tm *TransactionManager) *RecordStore {
	return &RecordStore{db: db, tm: tm}
}

// List returns one page of a collection and the number of records matching
// the filters before paging.
func (s *RecordStore) List(ctx context.Context, collection string, q remote.Query) ([]json.RawMessage, int, error) {
	where, args := buildWhere(collection, q)
	exec := GetExecutor(ctx, s.db)

	var total int
	if err := sqlx.GetContext(ctx, exec, &total, "SELECT COUNT(*) FROM records WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", collection, err)
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, data, created_at, updated_at FROM records WHERE ")
	sb.WriteString(where)
	sb.WriteString(" ORDER BY ")
	if q.Sort != "" {
		args = append(args, q.Sort)
		sb.WriteString("data->($")
		sb.WriteString(strconv.Itoa(len(args)))
		sb.WriteString("::text)")
		if q.Desc {
			sb.WriteString(" DESC NULLS LAST, ")
		} else {
			sb.WriteString(" ASC NULLS LAST, ")
		}
	}
	sb.WriteString("seq")

	if q.Limit > 0 {
		page := max(q.Page, 1)
		args = append(args, q.Limit, (page-1)*q.Limit)
		sb.WriteString(" LIMIT $")
		sb.WriteString(strconv.Itoa(len(args) - 1))
		sb.WriteString(" OFFSET $")
		sb.WriteString(strconv.Itoa(len(args)))
	}

	var rows []storedRecord
	if err := sqlx.SelectContext(ctx, exec, &rows, sb.String(), args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", collection, err)
	}

	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		out = append(out, json.RawMessage(r.Data))
	}
	return out, total, nil
}

func buildWhere(collection string, q remote.Query) (string, []any) {
	args := []any{collection}
	conds := []string{"collection = $1"}

	for field, value := range q.Where {
		if field == "id" {
			args = append(args, value)
			conds = append(conds, "id = $"+strconv.Itoa(len(args)))
			continue
		}
		args = append(args, field, value)
		conds = append(conds, fmt.Sprintf("data->>($%d::text) = $%d", len(args)-1, len(args)))
	}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		conds = append(conds, "data::text ILIKE $"+strconv.Itoa(len(args)))
	}

	return strings.Join(conds, " AND "), args
}

func (s *RecordStore) Get(ctx context.Context, collection string, id domain.ID) (json.RawMessage, error) {
	var data types.JSONText
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &data,
		"SELECT data FROM records WHERE collection = $1 AND id = $2",
		collection, id.String(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return json.RawMessage(data), nil
}

// Insert stores a new record. A record without an id gets a UUID.
func (s *RecordStore) Insert(ctx context.Context, collection string, body json.RawMessage) (json.RawMessage, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	var id domain.ID
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, fmt.Errorf("%w: bad id: %v", domain.ErrValidation, err)
		}
	}
	if id.IsZero() {
		id = domain.ID(uuid.NewString())
		fields["id"], _ = json.Marshal(id)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", collection, err)
	}

	var saved types.JSONText
	err = sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &saved, `
		INSERT INTO records (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		RETURNING data`,
		collection, id.String(), string(data),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", collection, err)
	}
	return json.RawMessage(saved), nil
}

// Patch merges the top-level fields of body into the stored record. The id
// is never changed.
func (s *RecordStore) Patch(ctx context.Context, collection string, id domain.ID, body json.RawMessage) (json.RawMessage, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	delete(fields, "id")

	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	var saved types.JSONText
	err = sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &saved, `
		UPDATE records
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
		RETURNING data`,
		collection, id.String(), string(patch),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("patch %s/%s: %w", collection, id, err)
	}
	return json.RawMessage(saved), nil
}

// Delete removes a record and, in the same transaction, every dependent
// record pointing at it.
func (s *RecordStore) Delete(ctx context.Context, collection string, id domain.ID, dependents []Dependent) error {
	return s.tm.WithTransaction(ctx, func(ctx context.Context) error {
		exec := GetExecutor(ctx, s.db)

		res, err := exec.ExecContext(ctx,
			"DELETE FROM records WHERE collection = $1 AND id = $2",
			collection, id.String(),
		)
		if err != nil {
			return fmt.Errorf("delete %s/%s: %w", collection, id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrNotFound)
		}

		for _, dep := range dependents {
			if _, err := exec.ExecContext(ctx,
				"DELETE FROM records WHERE collection = $1 AND data->>($2::text) = $3",
				dep.Collection, dep.Field, id.String(),
			); err != nil {
				return fmt.Errorf("delete %s of %s/%s: %w", dep.Collection, collection, id, err)
			}
		}
		return nil
	})
}

// DeleteMany removes the listed records of one collection.
func (s *RecordStore) DeleteMany(ctx context.Context, collection string, ids []domain.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"DELETE FROM records WHERE collection = $1 AND id = ANY($2)",
		collection, pq.Array(keys),
	)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.RowsAffected()
}

func decodeObject(body json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object: %v", domain.ErrValidation, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", domain.ErrValidation)
	}
	return fields, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
