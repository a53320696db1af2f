package ledger

import (
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Position is one holder's unit balance for one asset.
//
// Invariants:
//   - Units > 0 for every stored position; a holder reaching zero is removed,
//     so "exists with zero units" is never observable
//   - for every asset, the sum of Units across all positions equals the
//     asset's TotalUnits at all times after tokenization (conservation)
//
// Conservation is not enforced row-by-row; it holds because the only
// mutations are the initial full-supply credit at tokenization and the
// debit/credit pair of a transfer, both applied inside one protocol
// transaction.
type Position struct {
	AssetID id.AssetID     `json:"asset_id"`
	Holder  id.Participant `json:"holder"`
	Units   uint64         `json:"units"`
}
