package domain

import (
	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
)

// Metadata hash length bounds. The hash is opaque to the ledger (typically a
// content digest of the off-chain asset documentation); only its length is
// validated.
const (
	MinMetadataHashLen = 11
	MaxMetadataHashLen = 256
)

// MetadataHash is the opaque metadata reference fixed at tokenization.
// Invariant: length in [11, 256]; immutable after asset creation.
type MetadataHash string

// ParseMetadataHash constructs a MetadataHash from external input.
//
// Errors: returns CodeInvalidParameters when the length is out of range. No
// trimming is applied; the hash is caller-owned opaque bytes.
func ParseMetadataHash(s string) (MetadataHash, error) {
	if len(s) < MinMetadataHashLen || len(s) > MaxMetadataHashLen {
		return "", derrors.Newf(derrors.CodeInvalidParameters,
			"metadata hash length must be between %d and %d characters", MinMetadataHashLen, MaxMetadataHashLen)
	}
	return MetadataHash(s), nil
}

func (m MetadataHash) IsNil() bool {
	return m == ""
}

func (m MetadataHash) String() string {
	return string(m)
}
