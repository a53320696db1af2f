package certificate

import (
	"context"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Store persists certificate bindings.
type Store interface {
	// Holder returns the current bearer or sentinel.ErrNotFound when no
	// certificate was minted for the asset.
	Holder(ctx context.Context, assetID id.AssetID) (id.Participant, error)

	// Mint creates the certificate bound to holder. Returns
	// sentinel.ErrConflict when a certificate already exists for the asset.
	Mint(ctx context.Context, assetID id.AssetID, holder id.Participant) error

	// Transfer rebinds the certificate from `from` to `to`. Returns
	// sentinel.ErrNotFound when no certificate exists and
	// sentinel.ErrInvalidState when `from` is not the current bearer.
	Transfer(ctx context.Context, assetID id.AssetID, from, to id.Participant) error
}
