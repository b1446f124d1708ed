package scores

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hersh/blitztris/internal/protocol"
)

// MemoryStore keeps scores in process memory. Everything is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]protocol.ScoreRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]protocol.ScoreRecord),
	}
}

func (m *MemoryStore) Insert(_ context.Context, rec protocol.ScoreRecord) (protocol.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = uuid.NewString()
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *MemoryStore) List(_ context.Context) ([]protocol.ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := make([]protocol.ScoreRecord, 0, len(m.records))
	for _, rec := range m.records {
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, nil
}

func (m *MemoryStore) Rename(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.Name = name
	m.records[id] = rec
	return nil
}

func (m *MemoryStore) Close(context.Context) error {
	return nil
}
