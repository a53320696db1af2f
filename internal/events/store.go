package events

import (
	"context"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Store persists the append-only event log and owns the transaction nonce.
//
// Append assigns the next transaction id and seals the hash chain; callers
// pass the event with TxID, PrevHash, and Hash unset. Implementations must
// keep id assignment atomic with respect to the protocol transaction
// boundary so ids stay gapless.
type Store interface {
	// Append assigns the next tx id, seals the event into the chain,
	// persists it, and returns the completed event.
	Append(ctx context.Context, e Event) (Event, error)

	// FindByTxID returns the event or sentinel.ErrNotFound.
	FindByTxID(ctx context.Context, txID id.TxID) (*Event, error)

	// LastTxID returns the most recently assigned transaction id, zero when
	// no event was ever appended.
	LastTxID(ctx context.Context) (id.TxID, error)
}
