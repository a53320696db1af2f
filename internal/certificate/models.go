package certificate

import (
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Certificate is the singleton ownership token for one asset.
//
// Invariants:
//   - exactly one certificate exists per asset once minted; minting twice is
//     impossible (the store refuses duplicates)
//   - exactly one holder at any time; the binding changes only when a holder
//     who both bears the certificate and fully divests transfers it
//
// The certificate binding is tracked independently of unit balances. The two
// are reconciled only at the moment of a full-divestment transfer; a partial
// transfer never moves the certificate even if the recipient ends up with
// more units than the bearer.
type Certificate struct {
	AssetID id.AssetID     `json:"asset_id"`
	Holder  id.Participant `json:"holder"`
}
