package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/easeaico/feelings/internal/feelings"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*feelings.Snapshot
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*feelings.Snapshot)}
}

func (s *MemoryStore) Save(_ context.Context, key string, snap *feelings.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[key] = snap.Clone()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) (*feelings.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[key]
	if !ok {
		return nil, ErrNotFound
	}
	return snap.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[key]; !ok {
		return ErrNotFound
	}
	delete(s.snaps, key)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.snaps))
	for key := range s.snaps {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
