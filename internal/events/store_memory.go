package events

import (
	"context"
	"sync"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	"github.com/grace-umanah/bit-holdings/pkg/platform/sentinel"
)

// InMemoryStore keeps the event log in process memory. The slice index of an
// event is always its tx id minus one.
type InMemoryStore struct {
	mu  sync.RWMutex
	log []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, e Event) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevHash := GenesisHash
	if n := len(s.log); n > 0 {
		prevHash = s.log[n-1].Hash
	}
	e.TxID = id.TxID(len(s.log) + 1)
	sealed := seal(prevHash, e)
	s.log = append(s.log, sealed)
	return sealed, nil
}

func (s *InMemoryStore) FindByTxID(_ context.Context, txID id.TxID) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := int(txID) - 1
	if idx < 0 || idx >= len(s.log) {
		return nil, sentinel.ErrNotFound
	}
	e := s.log[idx]
	return &e, nil
}

func (s *InMemoryStore) LastTxID(_ context.Context) (id.TxID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return id.TxID(len(s.log)), nil
}

// Snapshot returns a copy of the whole log in append order. Test and audit
// helper; not part of the Store interface.
func (s *InMemoryStore) Snapshot() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.log...)
}
