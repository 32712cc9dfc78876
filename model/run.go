package model

import "time"

// Run records one bsrun test invocation for the local history. It mirrors
// the consolidated Result plus enough context to replay the invocation.
type Run struct {
	// Unique ID for this run
	ID string `json:"id"`
	// Timestamp when the run started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Project tag the builds were submitted under
	Project string `json:"project,omitempty"`
	// Devices the run targeted
	Devices []string `json:"devices,omitempty"`
	// Devices whose tests failed
	FailedDevices []string `json:"failed_devices,omitempty"`
	// Devices that never started executing
	NoStartDevices []string `json:"no_start_devices,omitempty"`
	// Exit code of the run
	ExitCode int `json:"exit_code"`
	// Duration of the run
	Duration time.Duration `json:"duration"`
}
