package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/easeaico/feelings/internal/feelings"
)

// Manager saves and restores graphs through a Backend.
type Manager struct {
	backend Backend
}

// NewManager returns a Manager over backend.
func NewManager(backend Backend) *Manager {
	return &Manager{backend: backend}
}

// Backend exposes the underlying backend for optional capabilities.
func (m *Manager) Backend() Backend {
	return m.backend
}

// Save stores a snapshot of g under key.
func (m *Manager) Save(ctx context.Context, key string, g *feelings.Graph) error {
	if err := m.check(key); err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("graph cannot be nil")
	}

	snap := g.CreateSnapshot()
	if err := m.backend.Save(ctx, key, snap); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	slog.Debug("snapshot saved", "key", key, "feelings", len(snap.Feelings), "sources", len(snap.Effects))
	return nil
}

// Load replaces the contents of g with the snapshot stored under key.
func (m *Manager) Load(ctx context.Context, key string, g *feelings.Graph) error {
	if err := m.check(key); err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("graph cannot be nil")
	}

	snap, err := m.backend.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	if err := g.RestoreFromSnapshot(snap); err != nil {
		return fmt.Errorf("failed to restore snapshot %s: %w", key, err)
	}
	slog.Debug("snapshot restored", "key", key, "version", snap.Version, "taken_at", snap.Timestamp)
	return nil
}

// LoadOrInit loads key into g, or runs init on g when nothing is stored yet.
// It reports whether init ran.
func (m *Manager) LoadOrInit(ctx context.Context, key string, g *feelings.Graph, init func(*feelings.Graph) error) (bool, error) {
	err := m.Load(ctx, key, g)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if init != nil {
		if err := init(g); err != nil {
			return false, fmt.Errorf("failed to initialize graph %s: %w", key, err)
		}
	}
	slog.Info("graph initialized", "key", key, "feelings", g.Len())
	return true, nil
}

// Delete removes the snapshot stored under key.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.check(key); err != nil {
		return err
	}
	if err := m.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}
	return nil
}

// Keys lists stored snapshot keys in ascending order.
func (m *Manager) Keys(ctx context.Context) ([]string, error) {
	if m == nil || m.backend == nil {
		return nil, fmt.Errorf("storage manager not configured")
	}
	return m.backend.Keys(ctx)
}

// Close releases the backend.
func (m *Manager) Close() error {
	if m == nil || m.backend == nil {
		return nil
	}
	return m.backend.Close()
}

func (m *Manager) check(key string) error {
	if m == nil || m.backend == nil {
		return fmt.Errorf("storage manager not configured")
	}
	return ValidateKey(key)
}
