package protocol

import (
	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
)

// requireEligibleParticipant rejects identities that can never hold a
// position: the protocol owner and the service's own execution identity.
// Syntactic validity is enforced earlier by id.ParseParticipant at the
// transport boundary.
func (s *Service) requireEligibleParticipant(p id.Participant) error {
	if p.IsNil() {
		return derrors.New(derrors.CodeInvalidParameters, "participant identity is required")
	}
	if p == s.owner {
		return derrors.New(derrors.CodeInvalidParameters, "the protocol owner cannot be a participant")
	}
	if !s.contract.IsNil() && p == s.contract {
		return derrors.New(derrors.CodeInvalidParameters, "the ledger's own identity cannot be a participant")
	}
	return nil
}
