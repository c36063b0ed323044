package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

// MemoryStore keeps progress in memory. Records are copied on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, learnerID string) (*domain.Progress, error) {
	m.mu.RLock()
	data, ok := m.records[learnerID]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	var p domain.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProgress, err)
	}
	p.Normalize()
	return &p, nil
}

func (m *MemoryStore) Save(_ context.Context, p *domain.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	m.mu.Lock()
	m.records[p.LearnerID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, learnerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[learnerID]; !ok {
		return domain.ErrProgressNotFound
	}
	delete(m.records, learnerID)
	return nil
}

// Put stores raw bytes for a learner. Used to simulate damaged records.
func (m *MemoryStore) Put(learnerID string, raw []byte) {
	m.mu.Lock()
	m.records[learnerID] = raw
	m.mu.Unlock()
}

var _ Store = (*MemoryStore)(nil)
