// Package domain holds the ledger's typed identifiers and value objects.
//
// Construct values via the ParseX functions at trust boundaries (HTTP
// handlers, queue consumers, CLI); direct casting bypasses validation.
package domain

import (
	"strconv"
	"strings"

	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
)

// AssetID identifies a registered asset. IDs are assigned sequentially by the
// asset store starting at 1; zero is never a valid id.
type AssetID uint64

// ParseAssetID constructs an AssetID from external input.
//
// Errors: returns CodeInvalidParameters when the value is not a positive
// integer; existence of the asset is checked separately by the protocol core
// (CodeInvalidAsset).
func ParseAssetID(s string) (AssetID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, derrors.New(derrors.CodeInvalidParameters, "asset id must be a positive integer")
	}
	return AssetID(n), nil
}

// IsNil reports whether the id is the zero (never-assigned) value.
func (a AssetID) IsNil() bool {
	return a == 0
}

func (a AssetID) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// TxID identifies one accepted state transition in the event log. TxIDs are
// assigned by the event store: strictly increasing from 1, no gaps, no reuse.
type TxID uint64

// ParseTxID constructs a TxID from external input.
func ParseTxID(s string) (TxID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, derrors.New(derrors.CodeInvalidParameters, "transaction id must be a positive integer")
	}
	return TxID(n), nil
}

func (t TxID) IsNil() bool {
	return t == 0
}

func (t TxID) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// maxParticipantLen bounds principal identifiers. The ordering layer issues
// account addresses well under this; the bound exists to reject garbage at
// the trust boundary, not to encode an address format.
const maxParticipantLen = 128

// Participant is the principal identity of an account known to the ledger:
// issuers, holders, the protocol owner, and the service's own execution
// identity. The ledger treats principals as opaque; the deployment's
// ordering/finality layer defines their real-world meaning.
type Participant string

// ParseParticipant constructs a Participant from external input.
//
// Invariant: non-empty after trimming, at most 128 bytes, and restricted to
// [A-Za-z0-9._:-]. Eligibility (not the protocol owner, not the contract
// identity) is a protocol concern, checked per operation.
func ParseParticipant(s string) (Participant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", derrors.New(derrors.CodeInvalidParameters, "participant identity cannot be empty")
	}
	if len(s) > maxParticipantLen {
		return "", derrors.New(derrors.CodeInvalidParameters, "participant identity too long")
	}
	for i := 0; i < len(s); i++ {
		if !isPrincipalByte(s[i]) {
			return "", derrors.New(derrors.CodeInvalidParameters, "participant identity contains invalid characters")
		}
	}
	return Participant(s), nil
}

func isPrincipalByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '.' || b == '_' || b == ':' || b == '-':
		return true
	}
	return false
}

func (p Participant) IsNil() bool {
	return p == ""
}

func (p Participant) String() string {
	return string(p)
}
