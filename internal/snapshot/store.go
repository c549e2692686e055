package snapshot

import (
	"go.uber.org/atomic"
)

// Store is the lock-free live-snapshot pointer (§4.4, §5, §9): readers
// load it once per call/batch and never block; the installer replaces
// it wholesale with a fully built Snapshot. It is backed by
// go.uber.org/atomic.Value, a thin wrapper over sync/atomic.Value;
// Store.Load performs the one type assertion so call sites receive a
// *Snapshot directly.
type Store struct {
	v atomic.Value
}

// NewStore creates a store holding initial, which may be nil (the
// Empty state of §4.9's state machine — callers must handle a nil
// Load result until the first Install).
func NewStore(initial *Snapshot) *Store {
	s := &Store{}
	if initial != nil {
		s.v.Store(initial)
	}
	return s
}

// Load returns the currently live snapshot, or nil if none has been
// installed yet.
func (s *Store) Load() *Snapshot {
	v := s.v.Load()
	if v == nil {
		return nil
	}
	return v.(*Snapshot)
}

// Install atomically replaces the live snapshot. In-flight calls that
// already loaded the old snapshot continue to completion against it;
// new calls observe next immediately (I5).
func (s *Store) Install(next *Snapshot) {
	s.v.Store(next)
}
