// Package storage persists feeling graph snapshots. The graph itself never touches
// storage; hosts construct a Manager over one Backend and pass it around.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/easeaico/feelings/internal/config"
	"github.com/easeaico/feelings/internal/feelings"
)

var (
	ErrNotFound   = errors.New("snapshot not found")
	ErrInvalidKey = errors.New("invalid snapshot key")
)

// Backend stores one snapshot per key.
type Backend interface {
	Save(ctx context.Context, key string, snap *feelings.Snapshot) error
	// Load returns ErrNotFound when nothing is stored under key.
	Load(ctx context.Context, key string) (*feelings.Snapshot, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Match is a stored graph ranked by how close its values are to a reference.
type Match struct {
	Key      string
	Distance float64
}

// SimilarityFinder is implemented by backends that can rank stored graphs by
// emotional similarity.
type SimilarityFinder interface {
	Similar(ctx context.Context, key string, limit int) ([]Match, error)
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]{0,127}$`)

// ValidateKey reports whether key can be used with every backend.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverFile:
		codec, err := CodecByName(cfg.StoreFormat)
		if err != nil {
			return nil, err
		}
		return NewFileStore(cfg.WorkDir, codec)
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
