package txbuild

import (
	"fmt"

	"github.com/marwen-abid/stellarkit-go/errors"
)

// Stage is a builder lifecycle state.
type Stage string

const (
	// StageDraft accepts mutations: memo, fee, sequence, time bounds and operations.
	StageDraft Stage = "draft"

	// StageSequenced has a resolved sequence number.
	StageSequenced Stage = "sequenced"

	// StageFeeResolved has a resolved fee; the transaction is final.
	StageFeeResolved Stage = "fee_resolved"

	// StageEnveloped wraps the transaction in an unsigned envelope.
	StageEnveloped Stage = "enveloped"

	// StageSigned carries at least one signature. Further signers may be added.
	StageSigned Stage = "signed"

	// StageSubmitted has been handed to the network. The envelope may be resubmitted.
	StageSubmitted Stage = "submitted"
)

// legalTransitions defines the allowed stage transitions.
// Each key is a "from" stage, and the value is the set of valid "to" stages.
var legalTransitions = map[Stage]map[Stage]bool{
	StageDraft: {
		StageSequenced: true,
	},
	StageSequenced: {
		StageFeeResolved: true,
	},
	StageFeeResolved: {
		StageEnveloped: true,
	},
	StageEnveloped: {
		StageSigned: true,
	},
	StageSigned: {
		StageSigned:    true,
		StageSubmitted: true,
	},
	StageSubmitted: {
		StageSubmitted: true,
	},
}

// ValidateTransition checks that moving from "from" to "to" is legal.
// Transitions are strictly forward and no stage may be skipped.
//
// Returns nil if the transition is valid, or an error with code BUILDER_STAGE.
func ValidateTransition(from, to Stage) error {
	validToStages, exists := legalTransitions[from]
	if !exists {
		return errors.NewModelError(
			errors.BUILDER_STAGE,
			fmt.Sprintf("unknown source stage: %s", from),
			nil,
		)
	}

	if !validToStages[to] {
		return errors.NewModelError(
			errors.BUILDER_STAGE,
			fmt.Sprintf("illegal transition from %s to %s", from, to),
			nil,
		).With("from", string(from)).With("to", string(to))
	}

	return nil
}
