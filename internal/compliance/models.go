package compliance

import (
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Record is an authority-issued approval for one (asset, participant) pair.
//
// Invariants:
//   - absence of a record is equivalent to Approved = false (default-deny)
//   - records are upserted unconditionally: revocation is an overwrite with
//     Approved = false, never a delete, so the verification trail survives
//   - Authority is always the protocol owner under the single-authority
//     model; the field exists so the trail stays meaningful if authority
//     ever becomes delegable
type Record struct {
	AssetID        id.AssetID     `json:"asset_id"`
	Participant    id.Participant `json:"participant"`
	Approved       bool           `json:"approved"`
	VerifiedHeight uint64         `json:"verified_height"`
	Authority      id.Participant `json:"authority"`
}
