package reconcile

import (
	"sort"
	"sync"
	"time"

	"costline-hq/costline/pkg/estimate"
)

// PublishedEstimate is the stored result of the last successful run for
// a key, plus freshness bookkeeping. The embedded estimate is immutable
// once published; readers share the pointer.
type PublishedEstimate struct {
	Key         Key                `json:"key"`
	Estimate    *estimate.Estimate `json:"estimate"`
	PublishedAt time.Time          `json:"publishedAt"`
	Stale       bool               `json:"stale"`
	Runs        int                `json:"runs"`
}

// Store holds the latest published estimate per key in memory. Writes
// replace a key's entry atomically; a failed run marks the previous
// entry stale instead of removing it, so consumers keep the last good
// estimate with an explicit freshness flag.
type Store struct {
	estimates map[Key]*PublishedEstimate
	mu        sync.RWMutex

	now func() time.Time
}

// NewStore creates an empty estimate store.
func NewStore() *Store {
	return &Store{
		estimates: make(map[Key]*PublishedEstimate),
		now:       time.Now,
	}
}

// Publish replaces the key's estimate with a fresh one.
func (s *Store) Publish(key Key, est *estimate.Estimate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := 1
	if prev, ok := s.estimates[key]; ok {
		runs = prev.Runs + 1
	}
	s.estimates[key] = &PublishedEstimate{
		Key:         key,
		Estimate:    est,
		PublishedAt: s.now(),
		Stale:       false,
		Runs:        runs,
	}
}

// MarkStale flags the key's current estimate as out of date after a
// failed run. Missing keys are ignored.
func (s *Store) MarkStale(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.estimates[key]
	if !ok {
		return
	}
	entry := *prev
	entry.Stale = true
	entry.Runs = prev.Runs + 1
	s.estimates[key] = &entry
}

// Get returns a copy of the key's published entry.
func (s *Store) Get(key Key) (PublishedEstimate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.estimates[key]
	if !ok {
		return PublishedEstimate{}, false
	}
	return *entry, true
}

// Keys returns every key with a published entry, ordered by document
// then page for stable listings.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]Key, 0, len(s.estimates))
	for k := range s.estimates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].DocumentID != keys[j].DocumentID {
			return keys[i].DocumentID.String() < keys[j].DocumentID.String()
		}
		return keys[i].PageNumber < keys[j].PageNumber
	})
	return keys
}

// Size returns the number of stored entries.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.estimates)
}

// Clear removes all entries (for testing).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.estimates = make(map[Key]*PublishedEstimate)
}
