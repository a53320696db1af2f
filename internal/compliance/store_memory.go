package compliance

import (
	"context"
	"sync"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
)

type recordKey struct {
	asset       id.AssetID
	participant id.Participant
}

// InMemoryStore keeps compliance records in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[recordKey]Record)}
}

func (s *InMemoryStore) Get(_ context.Context, assetID id.AssetID, participant id.Participant) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[recordKey{assetID, participant}]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{record.AssetID, record.Participant}] = record
	return nil
}
