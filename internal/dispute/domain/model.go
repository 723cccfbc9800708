package domain

import "fmt"

// Stage is the coarse dispute lifecycle axis. It only moves forward.
type Stage string

const (
	StagePreDispute     Stage = "pre_dispute"
	StageDispute        Stage = "dispute"
	StagePreArbitration Stage = "pre_arbitration"
)

// Status is the fine dispute lifecycle axis within a stage.
type Status string

const (
	StatusOpened     Status = "opened"
	StatusExpired    Status = "expired"
	StatusAccepted   Status = "accepted"
	StatusCancelled  Status = "cancelled"
	StatusChallenged Status = "challenged"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// State pairs the two axes. A fresh dispute starts at (PreDispute, Opened).
type State struct {
	Stage  Stage
	Status Status
}

// Initial is the state a dispute record carries before any event.
func Initial() State {
	return State{Stage: StagePreDispute, Status: StatusOpened}
}

func ParseStage(raw string) (Stage, error) {
	switch Stage(raw) {
	case StagePreDispute, StageDispute, StagePreArbitration:
		return Stage(raw), nil
	}
	return "", fmt.Errorf("unknown dispute stage %q", raw)
}

func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusOpened, StatusExpired, StatusAccepted, StatusCancelled,
		StatusChallenged, StatusWon, StatusLost:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown dispute status %q", raw)
}
