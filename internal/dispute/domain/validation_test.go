package domain

import (
	"errors"
	"testing"
)

type countingSink struct {
	failures int
}

func (c *countingSink) IncValidationFailure() { c.failures++ }

func TestValidateTransitions(t *testing.T) {
	cases := []struct {
		name  string
		prev  State
		next  State
		valid bool
	}{
		{"open accepts accepted", State{StagePreDispute, StatusOpened}, State{StagePreDispute, StatusAccepted}, true},
		{"challenged resolves won", State{StageDispute, StatusChallenged}, State{StageDispute, StatusWon}, true},
		{"challenged resolves lost", State{StageDispute, StatusChallenged}, State{StageDispute, StatusLost}, true},
		{"challenged cannot expire", State{StageDispute, StatusChallenged}, State{StageDispute, StatusExpired}, false},
		{"expired self loop", State{StageDispute, StatusExpired}, State{StageDispute, StatusExpired}, true},
		{"won self loop", State{StageDispute, StatusWon}, State{StageDispute, StatusWon}, true},
		{"won cannot reopen", State{StageDispute, StatusWon}, State{StageDispute, StatusOpened}, false},
		{"stage cannot revert", State{StageDispute, StatusOpened}, State{StagePreDispute, StatusOpened}, false},
		{"arbitration stage is terminal", State{StagePreArbitration, StatusOpened}, State{StageDispute, StatusOpened}, false},
		{"stage advance overrides status", State{StageDispute, StatusLost}, State{StagePreArbitration, StatusOpened}, true},
		{"pre dispute accepts any stage", State{StagePreDispute, StatusOpened}, State{StagePreArbitration, StatusChallenged}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &countingSink{}
			v := NewValidator(sink)
			err := v.Validate(tc.prev, tc.next)
			if tc.valid {
				if err != nil {
					t.Fatalf("expected valid transition, got %v", err)
				}
				if sink.failures != 0 {
					t.Fatalf("expected no failures counted, got %d", sink.failures)
				}
				return
			}
			if !errors.Is(err, ErrWebhookValidationFailed) {
				t.Fatalf("expected validation failure, got %v", err)
			}
			if sink.failures != 1 {
				t.Fatalf("expected 1 failure counted, got %d", sink.failures)
			}
		})
	}
}

func TestValidateWithoutSink(t *testing.T) {
	v := NewValidator(nil)
	err := v.Validate(State{StageDispute, StatusWon}, State{StageDispute, StatusLost})
	if !errors.Is(err, ErrWebhookValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestInitialState(t *testing.T) {
	initial := Initial()
	if initial.Stage != StagePreDispute || initial.Status != StatusOpened {
		t.Fatalf("unexpected initial state %+v", initial)
	}
}
