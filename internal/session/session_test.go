package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_admin/internal/domain"
)

func TestMemory(t *testing.T) {
	m := NewMemory(nil)
	assert.Nil(t, m.Current())

	require.NoError(t, m.Set(&domain.Session{UserID: "1", Email: "a@b.c"}))
	got := m.Current()
	require.NotNil(t, got)
	assert.Equal(t, domain.ID("1"), got.UserID)

	got.Email = "mutated"
	assert.Equal(t, "a@b.c", m.Current().Email)

	require.NoError(t, m.Clear())
	assert.Nil(t, m.Current())
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Nil(t, f.Current())

	require.NoError(t, f.Set(&domain.Session{UserID: "42", Email: "me@blog.dev", Role: "admin"}))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	require.NotNil(t, reopened.Current())
	assert.Equal(t, domain.ID("42"), reopened.Current().UserID)
	assert.Equal(t, "admin", reopened.Current().Role)

	require.NoError(t, reopened.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Nil(t, reopened.Current())

	require.NoError(t, reopened.Clear())
}

func TestFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: [broken"), 0o600))

	_, err := OpenFile(path)
	assert.ErrorContains(t, err, "parse session")
}
