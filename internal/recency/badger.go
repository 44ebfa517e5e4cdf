package recency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const selectionKeyPrefix = "selection:"

// #region badger-store

// BadgerStore keeps the selection log in Badger under
// selection:<profile>:<unix-nanos>:<id> keys with JSON values.
type BadgerStore struct {
	db *badger.DB
	mu sync.Mutex
}

// NewBadgerStore wraps an open Badger database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadger opens (or creates) a Badger directory. An empty dir opens in memory.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

func profilePrefix(profileID string) string {
	return selectionKeyPrefix + profileID + ":"
}

func selectionKey(rec Record) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", profilePrefix(rec.ProfileID), rec.At.UTC().UnixNano(), rec.ID))
}

func (s *BadgerStore) Append(_ context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(selectionKey(rec), data); err != nil {
			return fmt.Errorf("set selection: %w", err)
		}
		return nil
	})
}

func (s *BadgerStore) Since(_ context.Context, profileID string, since time.Time) ([]Record, error) {
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(profilePrefix(profileID))
		start := []byte(fmt.Sprintf("%s%020d", prefix, since.UTC().UnixNano()))
		for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode selection: %w", err)
			}
			// a profile id containing ':' can share a prefix with another profile
			if rec.ProfileID != profileID || rec.At.Before(since) {
				continue
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) Prune(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(selectionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var rec Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode selection: %w", err)
			}
			if rec.At.Before(before) {
				stale = append(stale, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range stale {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete selection: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush prune: %w", err)
	}
	return len(stale), nil
}

// #endregion badger-store
