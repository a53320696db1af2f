package ledger

import (
	"context"
	"sync"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
)

type positionKey struct {
	asset  id.AssetID
	holder id.Participant
}

// InMemoryStore keeps ownership positions in process memory. Mutations are
// serialized by the protocol transaction boundary; the mutex protects
// concurrent readers.
type InMemoryStore struct {
	mu        sync.RWMutex
	positions map[positionKey]uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{positions: make(map[positionKey]uint64)}
}

func (s *InMemoryStore) Units(_ context.Context, assetID id.AssetID, holder id.Participant) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions[positionKey{assetID, holder}], nil
}

func (s *InMemoryStore) Credit(_ context.Context, assetID id.AssetID, holder id.Participant, units uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[positionKey{assetID, holder}] += units
	return nil
}

func (s *InMemoryStore) Debit(_ context.Context, assetID id.AssetID, holder id.Participant, units uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := positionKey{assetID, holder}
	balance := s.positions[key]
	if balance < units {
		return sentinel.ErrInvalidState
	}
	if balance == units {
		// Zero positions are logically absent.
		delete(s.positions, key)
		return nil
	}
	s.positions[key] = balance - units
	return nil
}

func (s *InMemoryStore) Holdings(_ context.Context, assetID id.AssetID) ([]Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var holdings []Position
	for key, units := range s.positions {
		if key.asset == assetID {
			holdings = append(holdings, Position{AssetID: key.asset, Holder: key.holder, Units: units})
		}
	}
	return holdings, nil
}
