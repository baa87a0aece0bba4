//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
	store     *RecordStore
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_records.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
	s.store = NewRecordStore(db, NewTransactionManager(db))
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM records")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) insert(collection, body string) map[string]any {
	raw, err := s.store.Insert(s.ctx, collection, json.RawMessage(body))
	s.Require().NoError(err)

	var out map[string]any
	s.Require().NoError(json.Unmarshal(raw, &out))
	return out
}

func (s *PostgresIntegrationSuite) TestInsert_AssignsIDWhenMissing() {
	rec := s.insert("categories", `{"name":"Travel"}`)

	s.NotEmpty(rec["id"])
	s.Equal("Travel", rec["name"])

	var count int
	err := s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM records WHERE collection = $1", "categories")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestInsert_KeepsNumericIDAndRejectsDuplicate() {
	rec := s.insert("posts", `{"id":12,"title":"Phở"}`)
	s.Equal(float64(12), rec["id"])

	_, err := s.store.Insert(s.ctx, "posts", json.RawMessage(`{"id":"12","title":"again"}`))
	s.ErrorIs(err, domain.ErrConflict)

	raw, err := s.store.Get(s.ctx, "posts", "12")
	s.NoError(err)
	s.JSONEq(`{"id":12,"title":"Phở"}`, string(raw))
}

func (s *PostgresIntegrationSuite) TestInsert_RejectsNonObject() {
	_, err := s.store.Insert(s.ctx, "posts", json.RawMessage(`[1,2]`))
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *PostgresIntegrationSuite) TestGet_NotFound() {
	_, err := s.store.Get(s.ctx, "posts", "missing")
	s.True(errors.Is(err, domain.ErrNotFound))
}

func (s *PostgresIntegrationSuite) TestList_FiltersSortsAndPages() {
	s.insert("posts", `{"id":"1","title":"Cafe sữa","category":"food","createdAt":"2024-01-01T00:00:00.000Z"}`)
	s.insert("posts", `{"id":"2","title":"Hanoi","category":"travel","createdAt":"2024-01-03T00:00:00.000Z"}`)
	s.insert("posts", `{"id":"3","title":"Bún chả","category":"food","createdAt":"2024-01-02T00:00:00.000Z"}`)
	s.insert("comments", `{"id":"c1","postId":"1","text":"ngon"}`)

	all, total, err := s.store.List(s.ctx, "posts", remote.Query{})
	s.NoError(err)
	s.Equal(3, total)
	s.Len(all, 3)

	food, total, err := s.store.List(s.ctx, "posts", remote.Query{
		Where: map[string]string{"category": "food"},
		Sort:  "createdAt",
		Desc:  true,
	})
	s.NoError(err)
	s.Equal(2, total)
	s.Require().Len(food, 2)
	s.Contains(string(food[0]), `"Bún chả"`)

	page, total, err := s.store.List(s.ctx, "posts", remote.Query{Sort: "createdAt", Page: 2, Limit: 2})
	s.NoError(err)
	s.Equal(3, total)
	s.Require().Len(page, 1)
	s.Contains(string(page[0]), `"Hanoi"`)

	found, total, err := s.store.List(s.ctx, "posts", remote.Query{Search: "hanoi"})
	s.NoError(err)
	s.Equal(1, total)
	s.Len(found, 1)

	byID, _, err := s.store.List(s.ctx, "comments", remote.Eq("postId", "1"))
	s.NoError(err)
	s.Len(byID, 1)
}

func (s *PostgresIntegrationSuite) TestPatch_MergesFieldsAndKeepsID() {
	s.insert("posts", `{"id":"5","title":"Draft","status":"public"}`)

	raw, err := s.store.Patch(s.ctx, "posts", "5", json.RawMessage(`{"status":"private","id":"99"}`))
	s.NoError(err)
	s.JSONEq(`{"id":"5","title":"Draft","status":"private"}`, string(raw))

	_, err = s.store.Patch(s.ctx, "posts", "404", json.RawMessage(`{"status":"private"}`))
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestDelete_RemovesDependents() {
	s.insert("posts", `{"id":"7","title":"Post"}`)
	s.insert("posts", `{"id":"8","title":"Other"}`)
	s.insert("comments", `{"id":"c1","postId":"7","text":"a"}`)
	s.insert("comments", `{"id":"c2","postId":"7","text":"b"}`)
	s.insert("comments", `{"id":"c3","postId":"8","text":"c"}`)

	err := s.store.Delete(s.ctx, "posts", "7", []Dependent{{Collection: "comments", Field: "postId"}})
	s.NoError(err)

	_, total, err := s.store.List(s.ctx, "comments", remote.Query{})
	s.NoError(err)
	s.Equal(1, total)

	err = s.store.Delete(s.ctx, "posts", "7", nil)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestDeleteMany() {
	s.insert("members", `{"id":"m1","name":"A"}`)
	s.insert("members", `{"id":"m2","name":"B"}`)
	s.insert("members", `{"id":"m3","name":"C"}`)

	n, err := s.store.DeleteMany(s.ctx, "members", []domain.ID{"m1", "m3", "zz"})
	s.NoError(err)
	s.Equal(int64(2), n)
}

func (s *PostgresIntegrationSuite) TestTransactionManager_Rollback() {
	tm := NewTransactionManager(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		_, err := s.store.Insert(ctx, "categories", json.RawMessage(`{"id":"x","name":"X"}`))
		s.Require().NoError(err)
		return errors.New("abort")
	})
	s.Error(err)

	_, err = s.store.Get(s.ctx, "categories", "x")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestCollections() {
	s.insert("posts", `{"title":"a"}`)
	s.insert("posts", `{"title":"b"}`)
	s.insert("members", `{"name":"c"}`)

	infos, err := s.store.Collections(s.ctx)
	s.NoError(err)
	s.Require().Len(infos, 2)
	s.Equal("members", infos[0].Name)
	s.Equal(1, infos[0].Count)
	s.Equal("posts", infos[1].Name)
	s.Equal(2, infos[1].Count)
	s.False(infos[1].LastUpdatedAt.IsZero())
}

func (s *PostgresIntegrationSuite) TestTransactionManager_NestedCallJoinsOuter() {
	tm := NewTransactionManager(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		outer := TxFromContext(ctx)
		return tm.WithTransaction(ctx, func(ctx context.Context) error {
			s.Same(outer, TxFromContext(ctx))
			_, err := s.store.Insert(ctx, "categories", json.RawMessage(`{"id":"y","name":"Y"}`))
			return err
		})
	})
	s.NoError(err)

	_, err = s.store.Get(s.ctx, "categories", "y")
	s.NoError(err)
}
