// Package store provides the normalized in-memory entity collections
// backing the derived-view engines. Each entity type gets its own
// independent Store instance; there is no ownership sharing across
// feature scopes.
package store

import (
	"sort"
	"sync"
)

// Entity is anything addressable by a stable string identifier.
type Entity interface {
	Key() string
}

// Store holds a normalized collection keyed by identifier. All
// mutations go through the declared operations; snapshots returned by
// read accessors are fresh slices and safe to retain.
//
// An optional comparator keeps snapshots in a fixed order (e.g.
// positions by market value descending). Without one, insertion order
// is preserved.
type Store[T Entity] struct {
	mu      sync.RWMutex
	byID    map[string]T
	order   []string // insertion order of identifiers
	less    func(a, b T) bool
	version uint64
}

// New creates an empty store preserving insertion order.
func New[T Entity]() *Store[T] {
	return &Store[T]{byID: make(map[string]T)}
}

// NewSorted creates an empty store whose snapshots are ordered by the
// given comparator. The sort is stable, so equal elements keep their
// insertion order.
func NewSorted[T Entity](less func(a, b T) bool) *Store[T] {
	return &Store[T]{byID: make(map[string]T), less: less}
}

// SetAll replaces the entire collection; no prior entries survive.
func (s *Store[T]) SetAll(records []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[string]T, len(records))
	s.order = s.order[:0]
	for _, rec := range records {
		id := rec.Key()
		if _, exists := s.byID[id]; !exists {
			s.order = append(s.order, id)
		}
		s.byID[id] = rec
	}
	s.version++
}

// AddOne inserts a record. Insertion is idempotent by identifier: a
// retry carrying an id that already exists is a no-op rather than a
// duplicate or an error.
func (s *Store[T]) AddOne(record T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := record.Key()
	if _, exists := s.byID[id]; exists {
		return
	}
	s.byID[id] = record
	s.order = append(s.order, id)
	s.version++
}

// UpsertOne inserts if absent, otherwise replaces the stored record
// wholesale. Replacement is field-level, not a deep merge: the caller's
// record wins for every field.
func (s *Store[T]) UpsertOne(record T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := record.Key()
	if _, exists := s.byID[id]; !exists {
		s.order = append(s.order, id)
	}
	s.byID[id] = record
	s.version++
}

// RemoveOne deletes a record by identifier; absent ids are a no-op.
func (s *Store[T]) RemoveOne(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; !exists {
		return
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.version++
}

// All returns a snapshot of the collection in stable order.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	if s.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.less(out[i], out[j]) })
	}
	return out
}

// AllVersioned returns a snapshot together with the version it was
// taken at, under one lock. Callers keying a cache on the version must
// use this instead of separate All and Version calls, which could
// straddle a mutation.
func (s *Store[T]) AllVersioned() ([]T, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	if s.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.less(out[i], out[j]) })
	}
	return out, s.version
}

// Entities returns an identifier-to-record mapping for existence checks.
func (s *Store[T]) Entities() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]T, len(s.byID))
	for id, rec := range s.byID {
		out[id] = rec
	}
	return out
}

// Get returns the record with the given identifier, if present.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	return rec, ok
}

// Count returns the number of stored records.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Version is a monotonically increasing mutation counter. Derived-view
// caches key on it to detect staleness.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
