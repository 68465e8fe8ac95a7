package store

import (
	"context"
	"sync"

	"github.com/sells-group/leadcrm/internal/model"
)

// MemoryStore keeps records for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.LeadRecord
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Upsert(_ context.Context, rec model.LeadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = upsertSlice(s.records, rec)
	return nil
}

func (s *MemoryStore) All(_ context.Context) ([]model.LeadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.LeadRecord(nil), s.records...), nil
}

func (s *MemoryStore) Aggregate(_ context.Context) (model.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Summarize(s.records), nil
}

func (s *MemoryStore) ReplaceAll(_ context.Context, recs []model.LeadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]model.LeadRecord(nil), recs...)
	return nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
