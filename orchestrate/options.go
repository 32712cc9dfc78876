package orchestrate

import "time"

// Defaults for the orchestration options.
const (
	DefaultMaxParallel  = 5
	DefaultPollInterval = 15 * time.Second
	DefaultMaxWait      = 10 * time.Minute
)

// Options configures one orchestration invocation. It is threaded through
// the constructors explicitly; there is no process-wide mutable
// configuration.
type Options struct {
	// MaxParallel is the farm account's parallel-session ceiling. Each
	// batch carries up to twice this many devices, since the farm runs at
	// most MaxParallel of them concurrently and queues the rest.
	MaxParallel int
	// PollInterval is the fixed sleep between build status queries.
	PollInterval time.Duration
	// MaxWait is the wall-clock budget for polling one build. When
	// exhausted, the last snapshot is classified as-is.
	MaxWait time.Duration
	// Project tag attached to submitted builds.
	Project string
	// DeviceLogs enables device log capture on the farm.
	DeviceLogs bool
	// NoStartAsFailure counts devices that never started executing toward
	// the failed set.
	NoStartAsFailure bool
}

func (o Options) withDefaults() Options {
	if o.MaxParallel <= 0 {
		o.MaxParallel = DefaultMaxParallel
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultMaxWait
	}
	return o
}

func (o Options) batchSize() int {
	return o.MaxParallel * 2
}
