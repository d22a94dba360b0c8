package trip

import "sync"

// Store owns the current snapshot. It starts loading and empty; dependent
// components see an empty snapshot until the first load lands. A fresh load
// replaces the snapshot wholesale.
type Store struct {
	mu      sync.RWMutex
	snap    *Snapshot
	loading bool
	err     string
}

func NewStore() *Store {
	return &Store{loading: true}
}

// Replace installs a new snapshot and clears loading/error state.
func (s *Store) Replace(snap *Snapshot) {
	snap.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.loading = false
	s.err = ""
}

// Fail records a fatal ingestion error. Only set when even the fallback
// path could not produce usable data.
func (s *Store) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = msg
}

// Snapshot returns the current snapshot. It is never nil: before the first
// load it is an empty snapshot, so callers need no missing-key guards.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		empty := &Snapshot{Places: map[string]Place{}}
		empty.Normalize()
		return empty
	}
	return s.snap
}

// Loaded reports whether a snapshot has been installed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
