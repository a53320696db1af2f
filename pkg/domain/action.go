package domain

import (
	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
)

// Action tags the kind of state transition an event records.
type Action string

// The fixed action set. Every accepted transition appends exactly one event
// with one of these tags; the set only grows, never changes meaning.
const (
	ActionAssetTokenized       Action = "ASSET_TOKENIZED"
	ActionOwnershipTransferred Action = "OWNERSHIP_TRANSFERRED"
	ActionComplianceUpdated    Action = "COMPLIANCE_UPDATED"
)

// validActions is the single source of truth for valid action tags.
var validActions = map[Action]bool{
	ActionAssetTokenized:       true,
	ActionOwnershipTransferred: true,
	ActionComplianceUpdated:    true,
}

// ParseAction constructs an Action from external input (stream consumers,
// stored rows).
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.IsValid() {
		return "", derrors.New(derrors.CodeInvalidParameters, "unknown action tag")
	}
	return a, nil
}

// IsValid checks whether the action is one of the supported tags.
func (a Action) IsValid() bool {
	return validActions[a]
}

func (a Action) String() string {
	return string(a)
}
