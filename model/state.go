package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownState is returned when the remote system reports a status string
// outside the known vocabulary.
var ErrUnknownState = errors.New("unknown test state")

// State is the status of a build or session as reported by the device farm.
// It is normalized once at the ingestion boundary via ParseState; everything
// downstream works with the closed enumeration.
type State string

const (
	StateQueued   State = "queued"
	StateRunning  State = "running"
	StatePassed   State = "passed"
	StateFailed   State = "failed"
	StateError    State = "error"
	StateTimedOut State = "timed out"
	StateSkipped  State = "skipped"
)

var states = []State{
	StateQueued,
	StateRunning,
	StatePassed,
	StateFailed,
	StateError,
	StateTimedOut,
	StateSkipped,
}

// ParseState normalizes a raw status string. An empty string means the
// remote has not populated the field yet and is treated as running; any
// other unrecognized value is an error.
func ParseState(raw string) (State, error) {
	if raw == "" {
		return StateRunning, nil
	}
	lower := strings.ToLower(raw)
	for _, s := range states {
		if lower == string(s) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, raw)
}

// IsTerminal reports whether the state ends polling: passed, failed, error,
// timed out and skipped are terminal; queued and running are not.
func (s State) IsTerminal() bool {
	switch s {
	case StatePassed, StateFailed, StateError, StateTimedOut, StateSkipped:
		return true
	}
	return false
}

// IsSuccess reports whether the state counts as a successful run. Skipped
// counts: the device was excluded by policy, not by a test failure.
func (s State) IsSuccess() bool {
	return s == StatePassed || s == StateSkipped
}

func (s State) String() string {
	return string(s)
}

// Outcome is the normalized per-session verdict derived from a State and
// whether the session ever started executing.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeFailed       Outcome = "failed"
	OutcomeNoStart      Outcome = "no_start"
	OutcomeStillRunning Outcome = "still_running"
)

// ClassifyOutcome maps a session state to an Outcome. It is a pure function
// of (state, hasStart). An error state on a session that never started is an
// infrastructure no-start, not a test failure; callers may retry those
// separately.
func ClassifyOutcome(state State, hasStart bool) Outcome {
	switch state {
	case StatePassed:
		return OutcomeSuccess
	case StateSkipped:
		return OutcomeSkipped
	case StateFailed, StateTimedOut:
		return OutcomeFailed
	case StateError:
		if hasStart {
			return OutcomeFailed
		}
		return OutcomeNoStart
	default:
		return OutcomeStillRunning
	}
}

// IsFailure reports whether the outcome is a genuine test failure.
func (o Outcome) IsFailure() bool {
	return o == OutcomeFailed
}

// IsSuccess reports whether the outcome counts toward overall success.
func (o Outcome) IsSuccess() bool {
	return o == OutcomeSuccess || o == OutcomeSkipped
}
