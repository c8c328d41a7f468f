package store

import (
	"errors"
	"sync"
	"time"

	"golfwatch/internal/forecast"
)

// ErrNotFound is returned before the first successful forecast refresh.
var ErrNotFound = errors.New("no forecast table available")

// Snapshot is one evaluated forecast table together with its fetch time.
type Snapshot struct {
	Table     forecast.Table `json:"table"`
	FetchedAt time.Time      `json:"fetchedAt"` // always UTC
}

// MemoryStore caches the latest evaluated table. Past verdicts are not kept:
// the monitor only ever acts on the current horizon.
type MemoryStore struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveTable replaces the cached snapshot.
func (s *MemoryStore) SaveTable(table forecast.Table, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &Snapshot{Table: table, FetchedAt: fetchedAt.UTC()}
}

// Latest returns the cached snapshot.
func (s *MemoryStore) Latest() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return Snapshot{}, ErrNotFound
	}
	return *s.snap, nil
}
