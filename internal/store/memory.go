package store

import (
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// MemoryStore is a concurrency-safe holder for the single process-wide snapshot.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *weather.Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the current snapshot, if any.
func (s *MemoryStore) Load() (*weather.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot, s.snapshot != nil
}

// Save replaces the current snapshot. Last write wins.
func (s *MemoryStore) Save(snapshot *weather.Snapshot) {
	if snapshot == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot
}
