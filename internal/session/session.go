// Package session holds the identity of the signed-in user and hands it to
// controllers and services explicitly.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"blog_admin/internal/domain"
)

// Memory keeps the session in process.
type Memory struct {
	mu      sync.RWMutex
	current *domain.Session
}

func NewMemory(initial *domain.Session) *Memory {
	return &Memory{current: initial}
}

// Current returns a copy of the session, or nil when signed out.
func (m *Memory) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

func (m *Memory) Set(s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s == nil {
		m.current = nil
		return nil
	}
	cp := *s
	m.current = &cp
	return nil
}

func (m *Memory) Clear() error {
	return m.Set(nil)
}

// File persists the session as YAML so a CLI can stay signed in across runs.
type File struct {
	path string
	mem  *Memory
}

// OpenFile reads the session stored at path. A missing file means signed out.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, mem: NewMemory(nil)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s domain.Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if s.UserID != "" || s.Email != "" {
		_ = f.mem.Set(&s)
	}
	return f, nil
}

func (f *File) Current() *domain.Session {
	return f.mem.Current()
}

func (f *File) Set(s *domain.Session) error {
	if s == nil {
		return f.Clear()
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return f.mem.Set(s)
}

func (f *File) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return f.mem.Clear()
}
