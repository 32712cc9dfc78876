// Package orchestrate contains the build orchestration core: batching
// device sets into builds, polling each build to completion, classifying
// per-device session outcomes and aggregating a consolidated result.
package orchestrate

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bsrun/bsrun/browserstack"
	"github.com/bsrun/bsrun/model"
)

// Builds is the build submission and status interface consumed by the
// core, implemented by the browserstack client.
type Builds interface {
	Submit(ctx context.Context, appRef, suiteRef string, deviceNames []string, opts browserstack.SubmitOptions) (string, error)
	Status(ctx context.Context, buildID string) (model.BuildSnapshot, error)
	Last(ctx context.Context) (model.BuildSnapshot, bool, error)
}

// Reports fetches per-session junit reports.
type Reports interface {
	JUnitReport(ctx context.Context, buildID, sessionID string) (string, error)
}

// Orchestrator runs the full submit/poll/classify/aggregate cycle. Batches
// are submitted and polled strictly one at a time: the farm rejects more
// concurrent builds than the account tier allows.
type Orchestrator struct {
	logger     zerolog.Logger
	builds     Builds
	opts       Options
	poller     *Poller
	classifier *Classifier
	aggregator Aggregator
}

// New builds an Orchestrator.
func New(logger zerolog.Logger, builds Builds, reports Reports, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		logger:     logger,
		builds:     builds,
		opts:       opts,
		poller:     NewPoller(logger, builds, opts),
		classifier: NewClassifier(logger, reports),
		aggregator: Aggregator{NoStartAsFailure: opts.NoStartAsFailure},
	}
}

// Run submits the device set in batches against the given app and suite
// references, drives every build to completion and returns the
// consolidated result. A submission or polling transport error aborts the
// run; retry policy belongs to the caller.
func (o *Orchestrator) Run(ctx context.Context, appRef, suiteRef string, devices []model.Device) (*model.Result, error) {
	result := model.NewResult(uuid.NewString())

	for _, batch := range splitBatches(devices, o.opts.batchSize()) {
		o.logger.Info().
			Str("run_id", result.RunID).
			Strs("devices", model.DeviceNames(batch)).
			Msg("Start testing devices")

		buildID, err := o.builds.Submit(ctx, appRef, suiteRef, model.DeviceNames(batch), browserstack.SubmitOptions{
			Project:    o.opts.Project,
			DeviceLogs: o.opts.DeviceLogs,
		})
		if err != nil {
			return nil, err
		}

		snap, exhausted, err := o.poller.Wait(ctx, buildID)
		if err != nil {
			return nil, err
		}
		if exhausted {
			o.logger.Warn().
				Str("build_id", buildID).
				Msg("Classifying sessions from a non-terminal snapshot")
		}

		o.logSessions(ctx, snap)
		o.aggregator.Fold(result, snap)
	}
	return result, nil
}

// FailedFromLastBuild re-fetches the most recent build, classifies it with
// no-start devices included, and returns the devices to retest. An empty
// build history yields an empty set.
func (o *Orchestrator) FailedFromLastBuild(ctx context.Context) ([]model.Device, error) {
	snap, ok, err := o.builds.Last(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return FailedDevices(snap, true), nil
}

// DevicesFromLastBuild returns every device the most recent build targeted.
func (o *Orchestrator) DevicesFromLastBuild(ctx context.Context) ([]model.Device, error) {
	snap, ok, err := o.builds.Last(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return snap.AllDevices(), nil
}

// logSessions reports each device's latest session outcome.
func (o *Orchestrator) logSessions(ctx context.Context, snap model.BuildSnapshot) {
	for _, bd := range snap.Devices {
		session, ok := bd.Latest()
		if !ok {
			o.logger.Warn().Str("device", bd.Device.Name).Msg("No session recorded for device")
			continue
		}
		switch session.Outcome() {
		case model.OutcomeSuccess:
			o.logger.Info().Str("device", bd.Device.Name).Msg("Test device passed")
		case model.OutcomeSkipped:
			o.logger.Warn().
				Str("device", bd.Device.Name).
				Str("reason", o.classifier.ErrorMessage(ctx, snap.ID, session)).
				Msg("Test device skipped")
		case model.OutcomeStillRunning:
			// The device may be busy or unavailable and never left the queue
			o.logger.Warn().
				Str("device", bd.Device.Name).
				Str("status", session.Status.String()).
				Msg("The device may be busy or unavailable")
		case model.OutcomeNoStart:
			o.logger.Warn().Str("device", bd.Device.Name).Msg("Session never started on device")
		default:
			message := o.classifier.ErrorMessage(ctx, snap.ID, session)
			o.logger.Error().
				Str("device", bd.Device.Name).
				Str("error", firstLines(message, 20)).
				Msg("Test device failed")
		}
	}
}

// firstLines truncates long junit reports for log output.
func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + "\n..."
}

// splitBatches partitions devices into batches of at most size, preserving
// order. Every device lands in exactly one batch.
func splitBatches(devices []model.Device, size int) [][]model.Device {
	if size <= 0 {
		size = 1
	}
	var batches [][]model.Device
	for i := 0; i < len(devices); i += size {
		end := min(i+size, len(devices))
		batches = append(batches, devices[i:end:end])
	}
	return batches
}
