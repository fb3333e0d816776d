package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/easeaico/feelings/internal/feelings"
)

// FileStore keeps one file per key in a directory.
type FileStore struct {
	dir   string
	codec Codec
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string, codec Codec) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store directory is required")
	}
	if codec == nil {
		return nil, fmt.Errorf("codec cannot be nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir, codec: codec}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+s.codec.Extension())
}

// Save writes to a temp file and renames it over the previous snapshot.
func (s *FileStore) Save(_ context.Context, key string, snap *feelings.Snapshot) error {
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.codec.Encode(tmp, snap); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, key string) (*feelings.Snapshot, error) {
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()
	return s.codec.Decode(f)
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *FileStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list store directory: %w", err)
	}
	ext := s.codec.Extension()
	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), ext))
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *FileStore) Close() error {
	return nil
}
