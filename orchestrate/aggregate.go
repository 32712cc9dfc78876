package orchestrate

import "github.com/bsrun/bsrun/model"

// Aggregator folds build snapshots into an orchestration result. It holds
// no state of its own; replaying the same snapshots yields the same result
// regardless of order.
type Aggregator struct {
	// NoStartAsFailure counts no-start devices toward the failed set.
	NoStartAsFailure bool
}

// Fold records every device of the snapshot into the result. A device with
// multiple sessions uses its most recent one; a device the farm recorded no
// sessions for never started.
func (a Aggregator) Fold(result *model.Result, snap model.BuildSnapshot) {
	for _, bd := range snap.Devices {
		session, ok := bd.Latest()
		if !ok {
			result.Record(bd.Device, model.OutcomeNoStart, a.NoStartAsFailure)
			continue
		}
		result.Record(bd.Device, session.Outcome(), a.NoStartAsFailure)
	}
}

// FailedDevices classifies one snapshot in isolation and returns the failed
// device set, optionally counting no-start devices. Used by the
// retry-failed path on the most recent build.
func FailedDevices(snap model.BuildSnapshot, includeNoStart bool) []model.Device {
	result := model.NewResult("")
	Aggregator{NoStartAsFailure: includeNoStart}.Fold(result, snap)
	return result.Failed
}
