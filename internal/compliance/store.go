package compliance

import (
	"context"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Store persists compliance approvals.
type Store interface {
	// Get returns the record for (asset, participant) or sentinel.ErrNotFound
	// when none was ever written. Callers must treat not-found as
	// non-compliant.
	Get(ctx context.Context, assetID id.AssetID, participant id.Participant) (*Record, error)

	// Upsert writes the record, overwriting any prior one unconditionally.
	Upsert(ctx context.Context, record Record) error
}
