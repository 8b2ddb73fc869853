package metrics

import (
	"sync/atomic"
	"time"
)

// Store holds the latest published Snapshot.
//
// The Aggregator publishes by swapping in a freshly built snapshot; readers
// load it without locks and never block the writer.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store holding an empty snapshot that starts at start.
func NewStore(start time.Time) *Store {
	s := &Store{}
	s.current.Store(&Snapshot{StartTime: start, Now: start})
	return s
}

// Publish replaces the current snapshot. snap must not be modified afterwards.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Load returns a copy of the current snapshot.
func (s *Store) Load() Snapshot {
	return *s.current.Load()
}
