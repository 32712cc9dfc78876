package model

import (
	"errors"
	"testing"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr bool
	}{
		{in: "", want: StateRunning},
		{in: "running", want: StateRunning},
		{in: "Passed", want: StatePassed},
		{in: "TIMED OUT", want: StateTimedOut},
		{in: "queued", want: StateQueued},
		{in: "skipped", want: StateSkipped},
		{in: "exploded", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseState(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownState) {
					t.Fatalf("ParseState(%q) error = %v, want ErrUnknownState", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseState(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseState(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStateTerminal(t *testing.T) {
	terminal := []State{StatePassed, StateFailed, StateError, StateTimedOut, StateSkipped}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	for _, s := range []State{StateQueued, StateRunning} {
		if s.IsTerminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		hasStart bool
		want     Outcome
	}{
		{name: "passed", state: StatePassed, hasStart: true, want: OutcomeSuccess},
		{name: "passed without start time", state: StatePassed, hasStart: false, want: OutcomeSuccess},
		{name: "skipped", state: StateSkipped, hasStart: false, want: OutcomeSkipped},
		{name: "failed", state: StateFailed, hasStart: true, want: OutcomeFailed},
		{name: "timed out", state: StateTimedOut, hasStart: true, want: OutcomeFailed},
		{name: "error mid-run is a real failure", state: StateError, hasStart: true, want: OutcomeFailed},
		{name: "error without start never ran", state: StateError, hasStart: false, want: OutcomeNoStart},
		{name: "queued", state: StateQueued, hasStart: false, want: OutcomeStillRunning},
		{name: "running", state: StateRunning, hasStart: true, want: OutcomeStillRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyOutcome(tt.state, tt.hasStart); got != tt.want {
				t.Errorf("ClassifyOutcome(%q, %v) = %q, want %q", tt.state, tt.hasStart, got, tt.want)
			}
		})
	}
}
