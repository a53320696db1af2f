package asset

import (
	"context"
	"sync"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
)

// InMemoryStore keeps assets and the id counter in process memory. The
// protocol transaction boundary serializes mutations; the internal mutex only
// protects concurrent readers.
type InMemoryStore struct {
	mu     sync.RWMutex
	assets map[id.AssetID]Asset
	nextID id.AssetID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		assets: make(map[id.AssetID]Asset),
		nextID: 1,
	}
}

func (s *InMemoryStore) NextID(_ context.Context) (id.AssetID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID, nil
}

func (s *InMemoryStore) Insert(_ context.Context, a *Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID != s.nextID {
		return sentinel.ErrConflict
	}
	if _, exists := s.assets[a.ID]; exists {
		return sentinel.ErrConflict
	}
	s.assets[a.ID] = *a
	s.nextID++
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, assetID id.AssetID) (*Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.assets[assetID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (s *InMemoryStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(s.nextID) - 1, nil
}
