package asset

import (
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
)

// Asset is the aggregate root for a registered tokenized asset.
//
// Invariants:
//   - ID is assigned sequentially by the store, starting at 1
//   - TotalUnits > 0 and is immutable after creation
//   - 0 < TradeableUnits <= TotalUnits, set at creation
//   - MetadataHash length is in [11, 256] and is immutable after creation
//   - CreationHeight records the sequence marker at which the asset was
//     registered and never changes
//
// The record itself is immutable once created: no entry point rewrites an
// asset row. Ownership movement lives entirely in the ledger package; the
// only per-asset mutable state outside this struct is the certificate
// binding and the ownership positions.
type Asset struct {
	ID              id.AssetID      `json:"id"`
	PrimaryOwner    id.Participant  `json:"primary_owner"`
	TotalUnits      uint64          `json:"total_units"`
	TradeableUnits  uint64          `json:"tradeable_units"`
	MetadataHash    id.MetadataHash `json:"metadata_hash"`
	TransferEnabled bool            `json:"transfer_enabled"`
	CreationHeight  uint64          `json:"creation_height"`
}

// New validates tokenization inputs and builds an unpersisted asset. The ID
// is left unset; the store assigns it at insert.
//
// Errors: CodeInvalidParameters for zero or inverted unit counts and
// out-of-range metadata, matching the tokenize-asset input constraints.
func New(owner id.Participant, totalUnits, tradeableUnits uint64, metadata id.MetadataHash, height uint64) (*Asset, error) {
	if owner.IsNil() {
		return nil, derrors.New(derrors.CodeInvalidParameters, "primary owner is required")
	}
	if totalUnits == 0 {
		return nil, derrors.New(derrors.CodeInvalidParameters, "total units must be greater than zero")
	}
	if tradeableUnits == 0 {
		return nil, derrors.New(derrors.CodeInvalidParameters, "tradeable units must be greater than zero")
	}
	if tradeableUnits > totalUnits {
		return nil, derrors.New(derrors.CodeInvalidParameters, "tradeable units cannot exceed total units")
	}
	if _, err := id.ParseMetadataHash(string(metadata)); err != nil {
		return nil, err
	}

	return &Asset{
		PrimaryOwner:    owner,
		TotalUnits:      totalUnits,
		TradeableUnits:  tradeableUnits,
		MetadataHash:    metadata,
		TransferEnabled: true,
		CreationHeight:  height,
	}, nil
}
