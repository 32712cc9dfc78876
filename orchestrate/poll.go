package orchestrate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bsrun/bsrun/model"
)

// Poller drives one submitted build to a terminal state by querying its
// status at a fixed interval, bounded by a wall-clock budget. The remote
// system is the sole source of truth; there is no push notification.
type Poller struct {
	logger   zerolog.Logger
	builds   Builds
	interval time.Duration
	maxWait  time.Duration
}

// NewPoller builds a Poller from the orchestration options.
func NewPoller(logger zerolog.Logger, builds Builds, opts Options) *Poller {
	opts = opts.withDefaults()
	return &Poller{
		logger:   logger,
		builds:   builds,
		interval: opts.PollInterval,
		maxWait:  opts.MaxWait,
	}
}

// Wait polls the build until it reaches a terminal state or the budget is
// exhausted. The returned bool is true when the budget ran out; the
// snapshot is still usable, its sessions classify as still-running or
// no-start. Transport errors propagate immediately and are not retried
// here.
func (p *Poller) Wait(ctx context.Context, buildID string) (model.BuildSnapshot, bool, error) {
	var elapsed time.Duration
	for {
		snap, err := p.builds.Status(ctx, buildID)
		if err != nil {
			return model.BuildSnapshot{}, false, err
		}
		if snap.Status.IsTerminal() {
			return snap, false, nil
		}
		if elapsed >= p.maxWait {
			p.logger.Warn().
				Str("build_id", buildID).
				Dur("max_wait", p.maxWait).
				Msg("The maximum test duration has been reached")
			return snap, true, nil
		}

		p.logger.Info().
			Str("build_id", buildID).
			Str("status", snap.Status.String()).
			Dur("elapsed", elapsed).
			Msg("The test task is being executed")

		if err := sleep(ctx, p.interval); err != nil {
			return snap, false, err
		}
		elapsed += p.interval
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
