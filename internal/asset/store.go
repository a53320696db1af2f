package asset

import (
	"context"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Store persists asset records and owns the asset-id counter.
//
// Implementations must keep id assignment and insertion atomic with respect
// to the protocol transaction boundary: NextID peeks at the counter, Insert
// consumes it. The counter starts at 1 and never resets, so asset ids are
// strictly increasing with no reuse.
type Store interface {
	// NextID returns the id the next inserted asset will receive, without
	// consuming it.
	NextID(ctx context.Context) (id.AssetID, error)

	// Insert persists a new asset and advances the counter. The asset's ID
	// must equal the current NextID; returns sentinel.ErrConflict otherwise
	// or when the id is already taken.
	Insert(ctx context.Context, a *Asset) error

	// FindByID returns the asset or sentinel.ErrNotFound.
	FindByID(ctx context.Context, assetID id.AssetID) (*Asset, error)

	// Count returns the number of assets registered so far (counter minus one).
	Count(ctx context.Context) (uint64, error)
}
