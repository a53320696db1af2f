package certificate

import (
	"context"
	"sync"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
)

// InMemoryStore keeps certificate bindings in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	holders map[id.AssetID]id.Participant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{holders: make(map[id.AssetID]id.Participant)}
}

func (s *InMemoryStore) Holder(_ context.Context, assetID id.AssetID) (id.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holder, exists := s.holders[assetID]
	if !exists {
		return "", sentinel.ErrNotFound
	}
	return holder, nil
}

func (s *InMemoryStore) Mint(_ context.Context, assetID id.AssetID, holder id.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.holders[assetID]; exists {
		return sentinel.ErrConflict
	}
	s.holders[assetID] = holder
	return nil
}

func (s *InMemoryStore) Transfer(_ context.Context, assetID id.AssetID, from, to id.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.holders[assetID]
	if !exists {
		return sentinel.ErrNotFound
	}
	if current != from {
		return sentinel.ErrInvalidState
	}
	s.holders[assetID] = to
	return nil
}
