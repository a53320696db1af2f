package ledger

import (
	"context"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Store persists ownership positions.
//
// Units never fails on a missing position; absent means zero. Debit refuses
// to overdraw with sentinel.ErrInvalidState as a last line of defense; the
// protocol core checks the balance before any mutation, so a Debit failure
// inside an entry point indicates a bug, not a user error.
type Store interface {
	// Units returns the holder's balance for the asset, zero when no
	// position exists.
	Units(ctx context.Context, assetID id.AssetID, holder id.Participant) (uint64, error)

	// Credit adds units to the holder's position, creating it if absent.
	Credit(ctx context.Context, assetID id.AssetID, holder id.Participant, units uint64) error

	// Debit removes units from the holder's position, deleting it when the
	// balance reaches zero. Returns sentinel.ErrInvalidState when the
	// position holds fewer units than requested.
	Debit(ctx context.Context, assetID id.AssetID, holder id.Participant, units uint64) error

	// Holdings lists every position for the asset. Used by queries and by
	// conservation checks; order is unspecified.
	Holdings(ctx context.Context, assetID id.AssetID) ([]Position, error)
}
