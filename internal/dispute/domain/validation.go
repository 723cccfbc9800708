package domain

import "errors"

// ErrWebhookValidationFailed rejects a transition that would regress the
// lifecycle. The stored state is left unchanged; the event is discarded.
var ErrWebhookValidationFailed = errors.New("dispute_webhook_validation_failed")

// StageAllowed reports whether the stage axis may move from prev to next.
// Stages move linearly: pre_dispute -> dispute -> pre_arbitration.
func StageAllowed(prev, next Stage) bool {
	switch prev {
	case StagePreDispute:
		return true
	case StageDispute:
		return next != StagePreDispute
	case StagePreArbitration:
		return next == StagePreArbitration
	}
	return false
}

// StatusAllowed reports whether the status axis may move from prev to next
// within an unchanged stage. Expired, accepted, cancelled, won and lost are
// terminal self-loops; challenged resolves to won or lost.
func StatusAllowed(prev, next Status) bool {
	switch prev {
	case StatusOpened:
		return true
	case StatusExpired:
		return next == StatusExpired
	case StatusAccepted:
		return next == StatusAccepted
	case StatusCancelled:
		return next == StatusCancelled
	case StatusChallenged:
		return next == StatusChallenged || next == StatusWon || next == StatusLost
	case StatusWon:
		return next == StatusWon
	case StatusLost:
		return next == StatusLost
	}
	return false
}

// FailureCounter receives one increment per rejected transition. Injected
// so tests can assert on isolated instances.
type FailureCounter interface {
	IncValidationFailure()
}

// Validator checks dispute transitions against the lifecycle automaton.
// It is the sole safeguard against regression from stale or duplicate
// webhook delivery and must run on every delivery, including retries.
type Validator struct {
	failures FailureCounter
}

func NewValidator(failures FailureCounter) *Validator {
	return &Validator{failures: failures}
}

// Validate accepts a transition iff the stage check passes and, when the
// stage is unchanged, the status check passes too. A stage advance resets
// status semantics and is accepted regardless of the status axis.
func (v *Validator) Validate(prev, next State) error {
	stageOK := StageAllowed(prev.Stage, next.Stage)
	statusOK := true
	if prev.Stage == next.Stage {
		statusOK = StatusAllowed(prev.Status, next.Status)
	}
	if stageOK && statusOK {
		return nil
	}
	if v.failures != nil {
		v.failures.IncValidationFailure()
	}
	return ErrWebhookValidationFailed
}
