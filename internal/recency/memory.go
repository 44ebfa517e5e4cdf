package recency

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps the selection log in process. Used by replay and tests.
type MemoryStore struct {
	mu   sync.Mutex
	recs []Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *MemoryStore) Since(_ context.Context, profileID string, since time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.recs {
		if r.ProfileID == profileID && !r.At.Before(since) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func (s *MemoryStore) Prune(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.recs[:0]
	n := 0
	for _, r := range s.recs {
		if r.At.Before(before) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.recs = kept
	return n, nil
}
