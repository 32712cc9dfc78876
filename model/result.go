package model

import "sort"

// Result is the consolidated outcome of one orchestration invocation across
// all batches. It is derived entirely from build snapshots and can be
// rebuilt by replaying them; folding order does not matter.
type Result struct {
	// Unique ID for this orchestration run
	RunID string `json:"run_id"`
	// Total number of devices attempted
	Total int `json:"total"`
	// Devices whose latest session classified as failed (plus no-start
	// devices when the run opted into treating those as failures)
	Failed []Device `json:"failed,omitempty"`
	// Devices whose latest session never started executing
	NoStart []Device `json:"no_start,omitempty"`
	// True iff the failed set is empty
	Success bool `json:"success"`

	failedSet  map[string]Device
	noStartSet map[string]Device
}

// NewResult returns an empty Result ready for folding.
func NewResult(runID string) *Result {
	return &Result{
		RunID:      runID,
		Success:    true,
		failedSet:  make(map[string]Device),
		noStartSet: make(map[string]Device),
	}
}

// Record folds one device outcome into the result. noStartAsFailure moves
// no-start devices into the failed set in addition to the no-start set.
func (r *Result) Record(device Device, outcome Outcome, noStartAsFailure bool) {
	r.Total++
	switch outcome {
	case OutcomeFailed:
		r.failedSet[device.Name] = device
	case OutcomeNoStart:
		r.noStartSet[device.Name] = device
		if noStartAsFailure {
			r.failedSet[device.Name] = device
		}
	}
	r.Success = len(r.failedSet) == 0
	r.Failed = sortedDevices(r.failedSet)
	r.NoStart = sortedDevices(r.noStartSet)
}

func sortedDevices(set map[string]Device) []Device {
	devices := make([]Device, 0, len(set))
	for _, d := range set {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Name < devices[j].Name
	})
	return devices
}
