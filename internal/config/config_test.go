package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://localhost:8080", cfg.Store.BaseURL)
	assert.Equal(t, 1, cfg.Store.Retry.MaxAttempts)
	assert.Equal(t, 5, cfg.Collections.Posts.PageSize)
	assert.Equal(t, 10, cfg.Collections.Members.PageSize)
	assert.Equal(t, "members", cfg.Collections.Members.Path)
	assert.Equal(t, "admin@site.com", cfg.Auth.AdminEmail)
	assert.Equal(t, 6, cfg.Auth.MinPasswordSize)
	assert.Equal(t, []DependentConfig{{Collection: "comments", Field: "postId"}}, cfg.Server.Dependents["posts"])
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("BLOG_STORE_URL", "http://store.internal:3000")
	t.Setenv("BLOG_DB_PASSWORD", "s3cret")

	doc := `
store:
  base_url: ${BLOG_STORE_URL}
  timeout: 3s
database:
  user: blog
  password: ${BLOG_DB_PASSWORD}
  dbname: blog
collections:
  posts:
    page_size: 20
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "http://store.internal:3000", cfg.Store.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 20, cfg.Collections.Posts.PageSize)
	assert.Equal(t, "posts", cfg.Collections.Posts.Path)
	assert.Equal(t,
		"host=localhost port=5432 user=blog password=s3cret dbname=blog sslmode=disable",
		cfg.Database.DSN(),
	)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  admin_email: root@blog.dev\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "root@blog.dev", cfg.Auth.AdminEmail)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("store: [unclosed"))
	assert.ErrorContains(t, err, "parse config")
}
