package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"blog_admin/internal/api"
	"blog_admin/internal/config"
	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
	"blog_admin/internal/storage/postgres"
)

// memoryStore is a record store kept in maps, enough for the CLI flows.
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]map[string]any
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]map[string]any)}
}

func idOf(rec map[string]any) string {
	return fmt.Sprint(rec["id"])
}

func (m *memoryStore) List(_ context.Context, collection string, q remote.Query) ([]json.RawMessage, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []json.RawMessage
	for _, rec := range m.data[collection] {
		match := true
		for k, v := range q.Where {
			if fmt.Sprint(rec[k]) != v {
				match = false
			}
		}
		raw, _ := json.Marshal(rec)
		if q.Search != "" && !strings.Contains(strings.ToLower(string(raw)), strings.ToLower(q.Search)) {
			match = false
		}
		if match {
			out = append(out, raw)
		}
	}
	return out, len(out), nil
}

func (m *memoryStore) Get(_ context.Context, collection string, id domain.ID) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.data[collection] {
		if idOf(rec) == id.String() {
			return json.Marshal(rec)
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryStore) Insert(_ context.Context, collection string, body json.RawMessage) (json.RawMessage, error) {
	var rec map[string]any
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if rec["id"] == nil || rec["id"] == "" {
		rec["id"] = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[collection] = append(m.data[collection], rec)
	return json.Marshal(rec)
}

func (m *memoryStore) Patch(_ context.Context, collection string, id domain.ID, body json.RawMessage) (json.RawMessage, error) {
	var patch map[string]any
	if err := json.Unmarshal(body, &patch); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	delete(patch, "id")

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.data[collection] {
		if idOf(rec) == id.String() {
			for k, v := range patch {
				rec[k] = v
			}
			return json.Marshal(rec)
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryStore) Delete(_ context.Context, collection string, id domain.ID, dependents []postgres.Dependent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.data[collection])
	m.data[collection] = remove(m.data[collection], "id", id.String())
	if len(m.data[collection]) == before {
		return domain.ErrNotFound
	}
	for _, dep := range dependents {
		m.data[dep.Collection] = remove(m.data[dep.Collection], dep.Field, id.String())
	}
	return nil
}

func (m *memoryStore) DeleteMany(_ context.Context, collection string, ids []domain.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.data[collection])
	for _, id := range ids {
		m.data[collection] = remove(m.data[collection], "id", id.String())
	}
	return int64(before - len(m.data[collection])), nil
}

func (m *memoryStore) Collections(context.Context) ([]postgres.CollectionInfo, error) {
	return nil, nil
}

func (m *memoryStore) count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data[collection])
}

func remove(recs []map[string]any, field, value string) []map[string]any {
	out := recs[:0]
	for _, rec := range recs {
		if fmt.Sprint(rec[field]) != value {
			out = append(out, rec)
		}
	}
	return out
}

type BlogctlTestSuite struct {
	suite.Suite
	store   *memoryStore
	srv     *httptest.Server
	session string
}

func (s *BlogctlTestSuite) SetupTest() {
	s.store = newMemoryStore()

	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.srv = httptest.NewServer(api.NewServer(s.store, cfg.Server, logger).Routes())
	s.session = filepath.Join(s.T().TempDir(), "session.yaml")

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	s.Require().NoError(err)
	admin, _ := json.Marshal(domain.User{ID: "1", FullName: "Admin", Email: "admin@site.com", Password: string(hash), Role: domain.RoleAdmin})
	_, err = s.store.Insert(context.Background(), "users", admin)
	s.Require().NoError(err)
}

func (s *BlogctlTestSuite) TearDownTest() {
	s.srv.Close()
}

func TestBlogctlTestSuite(t *testing.T) {
	suite.Run(t, new(BlogctlTestSuite))
}

func (s *BlogctlTestSuite) run(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args,
		"--config", filepath.Join(s.T().TempDir(), "missing.yaml"),
		"--session", s.session,
		"--store", s.srv.URL,
		"--log-level", "error",
	))

	err := rootCmd.ExecuteContext(context.Background())
	resetFlags(rootCmd)
	current = nil
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

var createdID = regexp.MustCompile(`Created post (\S+)\.`)

func (s *BlogctlTestSuite) TestRegisterLoginAndWhoami() {
	out, err := s.run("register", "--first-name", "Lan", "--last-name", "Nguyen",
		"--email", "lan@example.com", "--password", "secret1", "--confirm", "secret1")
	s.Require().NoError(err)
	s.Contains(out, "Registered Lan Nguyen")
	s.Equal(1, s.store.count("members"))

	_, err = s.run("register", "--first-name", "Lan", "--last-name", "Nguyen",
		"--email", "lan@example.com", "--password", "secret1", "--confirm", "secret1")
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.run("login", "--email", "lan@example.com", "--password", "wrong1")
	s.Error(err)

	out, err = s.run("login", "--email", "lan@example.com", "--password", "secret1")
	s.Require().NoError(err)
	s.Contains(out, "Signed in as lan@example.com")

	out, err = s.run("whoami")
	s.Require().NoError(err)
	s.Contains(out, "Lan Nguyen <lan@example.com>")

	_, err = s.run("members")
	s.ErrorIs(err, domain.ErrPermission)

	_, err = s.run("logout")
	s.Require().NoError(err)

	_, err = s.run("whoami")
	s.ErrorIs(err, domain.ErrNoSession)
}

func (s *BlogctlTestSuite) TestPostLifecycle() {
	_, err := s.run("posts", "add", "--title", "Nope", "--content", "x")
	s.ErrorIs(err, domain.ErrPermission)

	_, err = s.run("login", "--email", "admin@site.com", "--password", "admin123")
	s.Require().NoError(err)

	out, err := s.run("posts", "add", "--title", "Café sữa đá", "--content", "Ngon", "--category", "food")
	s.Require().NoError(err)
	m := createdID.FindStringSubmatch(out)
	s.Require().Len(m, 2)
	id := m[1]

	out, err = s.run("posts", "list", "--search", "cafe")
	s.Require().NoError(err)
	s.Contains(out, "Café sữa đá")
	s.Contains(out, "page 1/1")

	out, err = s.run("posts", "list", "--category", "travel")
	s.Require().NoError(err)
	s.NotContains(out, "Café sữa đá")

	out, err = s.run("posts", "status", id, "private")
	s.Require().NoError(err)
	s.Contains(out, "is now private")

	_, err = s.run("posts", "edit", id, "--title", "")
	s.ErrorIs(err, domain.ErrValidation)

	out, err = s.run("comments", "add", id, "rất", "ngon")
	s.Require().NoError(err)
	s.Contains(out, "Added comment")
	s.Equal(1, s.store.count("comments"))

	out, err = s.run("posts", "show", id)
	s.Require().NoError(err)
	s.Contains(out, "Café sữa đá")
	s.Contains(out, "Admin")
	s.Contains(out, "rất ngon *")

	_, err = s.run("posts", "delete", id)
	s.Require().NoError(err)
	s.Equal(0, s.store.count("posts"))
	s.Equal(0, s.store.count("comments"))
}

func (s *BlogctlTestSuite) TestCategoriesAndMembers() {
	_, err := s.run("login", "--email", "admin@site.com", "--password", "admin123")
	s.Require().NoError(err)

	_, err = s.run("categories", "add", "Travel")
	s.Require().NoError(err)

	_, err = s.run("categories", "add", "travel")
	s.ErrorIs(err, domain.ErrValidation)

	out, err := s.run("categories")
	s.Require().NoError(err)
	s.Contains(out, "Travel")

	member, _ := json.Marshal(domain.Member{ID: "m1", Name: "Đặng Văn Lâm", Email: "lam@example.com", Status: domain.MemberActive})
	_, err = s.store.Insert(context.Background(), "members", member)
	s.Require().NoError(err)

	out, err = s.run("members", "list", "--search", "van lam")
	s.Require().NoError(err)
	s.Contains(out, "Đặng Văn Lâm")

	out, err = s.run("members", "block", "m1")
	s.Require().NoError(err)
	s.Contains(out, "is now blocked")

	_, err = s.run("members", "block", "nope")
	s.ErrorIs(err, domain.ErrNotFound)
}

func TestDescribe(t *testing.T) {
	verr := domain.NewValidationError()
	verr.Add("title", "title is required")

	cases := map[error]string{
		domain.ErrPermission:                                       "you do not have permission to do that",
		fmt.Errorf("x: %w", domain.ErrNoSession):                   "not signed in; run `blogctl login` first",
		&domain.RemoteError{Method: "GET", Status: 404}:            "not found",
		&domain.RemoteError{Method: "GET", Status: 500, Body: "x"}: "store answered 500: x",
	}
	for err, want := range cases {
		if got := describe(err); got != want {
			t.Errorf("describe(%v) = %q, want %q", err, got, want)
		}
	}
	if got := describe(verr); !strings.Contains(got, "title is required") {
		t.Errorf("describe(validation) = %q", got)
	}
}
