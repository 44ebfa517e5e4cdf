package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Versioned store used by replay and tests.
type MemoryStore struct {
	mu       sync.Mutex
	versions map[string]ShareRecord
	order    []string
	active   string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{versions: make(map[string]ShareRecord)}
}

func (m *MemoryStore) EnsureInitial(share float64) (ShareRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != "" {
		return m.versions[m.active], nil
	}
	rec := ShareRecord{VersionID: uuid.New().String(), Share: share, CreatedAt: time.Now().UTC()}
	m.put(rec)
	return rec, nil
}

func (m *MemoryStore) GetCurrent() (ShareRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" {
		return ShareRecord{}, ErrNoState
	}
	return m.versions[m.active], nil
}

func (m *MemoryStore) CommitState(rec ShareRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.versions[rec.VersionID]; dup {
		return fmt.Errorf("insert version: %s already exists", rec.VersionID)
	}
	if rec.ParentID != "" {
		if _, ok := m.versions[rec.ParentID]; !ok {
			return fmt.Errorf("insert version: parent %s not found", rec.ParentID)
		}
	}
	m.put(rec)
	return nil
}

func (m *MemoryStore) Get(_ context.Context) (float64, error) {
	cur, err := m.GetCurrent()
	if err != nil {
		return 0, err
	}
	return cur.Share, nil
}

func (m *MemoryStore) Set(_ context.Context, share float64) error {
	m.mu.Lock()
	parent := m.active
	m.mu.Unlock()
	return m.CommitState(ShareRecord{VersionID: uuid.New().String(), ParentID: parent, Share: share})
}

// Versions returns every committed version, oldest first.
func (m *MemoryStore) Versions() []ShareRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ShareRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.versions[id])
	}
	return out
}

func (m *MemoryStore) put(rec ShareRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.versions[rec.VersionID] = rec
	m.order = append(m.order, rec.VersionID)
	m.active = rec.VersionID
}
