package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
)

// ErrCatalogUnavailable means no catalog has been loaded or the loaded one is empty.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

//go:embed data/cards.yaml
var defaultDeck []byte

// #region store

type snapshot struct {
	cards []Candidate
	byID  map[string]int
}

// Store loads the catalog once and serves it read-only afterwards.
// Load is guarded by a mutex until the first success; reads are lock-free.
type Store struct {
	path string
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
	log  zerolog.Logger
}

// NewStore creates a store reading path, or the embedded deck when path is empty.
func NewStore(path string) *Store {
	return &Store{path: path, log: logging.Component("catalog")}
}

// NewStaticStore returns a store preloaded with cards.
func NewStaticStore(cards []Candidate) *Store {
	s := &Store{log: logging.Component("catalog")}
	if len(cards) > 0 {
		s.snap.Store(index(cards))
	}
	return s
}

// Load reads and validates the catalog on first call and returns the cached
// slice afterwards. Callers must not modify the returned slice.
func (s *Store) Load() ([]Candidate, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap.cards, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap := s.snap.Load(); snap != nil {
		return snap.cards, nil
	}

	data := defaultDeck
	source := "embedded"
	if s.path != "" {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
		}
		data, source = b, s.path
	}
	cards, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrCatalogUnavailable
	}
	s.snap.Store(index(cards))
	s.log.Info().Str("source", source).Int("cards", len(cards)).Msg("catalog loaded")
	return cards, nil
}

// Get returns the cached catalog or ErrCatalogUnavailable.
func (s *Store) Get() ([]Candidate, error) {
	snap := s.snap.Load()
	if snap == nil || len(snap.cards) == 0 {
		return nil, ErrCatalogUnavailable
	}
	return snap.cards, nil
}

// Len returns the number of cached cards, zero before a successful Load.
func (s *Store) Len() int {
	if snap := s.snap.Load(); snap != nil {
		return len(snap.cards)
	}
	return 0
}

// Lookup returns the candidate with the given id from the cached catalog.
func (s *Store) Lookup(id string) (Candidate, bool) {
	snap := s.snap.Load()
	if snap == nil {
		return Candidate{}, false
	}
	i, ok := snap.byID[id]
	if !ok {
		return Candidate{}, false
	}
	return snap.cards[i], true
}

func index(cards []Candidate) *snapshot {
	byID := make(map[string]int, len(cards))
	for i, c := range cards {
		byID[c.ID] = i
	}
	return &snapshot{cards: cards, byID: byID}
}

// #endregion store
