package workgate

import (
	"fmt"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/workgate/metrics"
)

// NoTimeout requests an indefinite wait wherever a timeout is accepted.
const NoTimeout time.Duration = -1

// config holds Executor configuration.
type config struct {
	// Workers is the fixed number of worker goroutines (W).
	// Default: 4
	Workers uint

	// QueueCapacity is the maximum number of accepted tasks waiting for a worker (N).
	// Default: 64
	QueueCapacity uint

	// Ceiling is the maximum number of in-flight tasks, queued or executing (M).
	// Zero means QueueCapacity + Workers. Must not be lower than QueueCapacity + Workers.
	// Default: 0
	Ceiling uint

	// AdmissionTimeout bounds how long Submit waits for an admission ticket.
	// Zero means no waiting; NoTimeout waits indefinitely.
	// Default: 100ms
	AdmissionTimeout time.Duration

	// EnqueueTimeout bounds how long an admitted task waits for queue space.
	// Default: 1s
	EnqueueTimeout time.Duration

	// RejectionPolicy decides what Submit does on admission timeout.
	// Default: RejectAbort
	RejectionPolicy RejectionPolicy

	// Respawn keeps a worker slot serving after a worker defect instead of retiring it.
	// Default: false (the executor becomes degraded)
	Respawn bool

	// LenientRelease reports a double ticket release as a worker defect instead of panicking.
	// Default: false
	LenientRelease bool

	Observers []Observer
	Metrics   metrics.Provider
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		Workers:          4,
		QueueCapacity:    64,
		Ceiling:          0, // QueueCapacity + Workers
		AdmissionTimeout: 100 * time.Millisecond,
		EnqueueTimeout:   time.Second,
		RejectionPolicy:  RejectAbort,
		Metrics:          metrics.NewNoopProvider(),
	}
}

// validateConfig checks the relationship between limits and fills derived defaults.
func validateConfig(cfg *config) error {
	minCeiling := cfg.QueueCapacity + cfg.Workers
	if cfg.Ceiling == 0 {
		cfg.Ceiling = minCeiling
	}
	if cfg.Ceiling < minCeiling {
		return errorc.With(
			ErrInvalidConfig,
			errorc.String("ceiling", fmt.Sprintf("%d is lower than queue capacity + workers = %d", cfg.Ceiling, minCeiling)),
		)
	}
	switch cfg.RejectionPolicy {
	case RejectAbort, RejectCallerRuns:
	default:
		return errorc.With(ErrInvalidConfig, errorc.String("rejection policy", cfg.RejectionPolicy.String()))
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoopProvider()
	}
	return nil
}

// Option configures an Executor. Use New(ctx, opts...) to construct it.
type Option func(*config) error

// WithWorkers sets the fixed number of worker goroutines (must be > 0).
func WithWorkers(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("workers", "WithWorkers requires n > 0"))
		}
		cfg.Workers = n
		return nil
	}
}

// WithQueueCapacity sets the bounded queue capacity (must be > 0).
func WithQueueCapacity(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("queue capacity", "WithQueueCapacity requires n > 0"))
		}
		cfg.QueueCapacity = n
		return nil
	}
}

// WithCeiling sets the maximum number of in-flight tasks.
// It must be at least queue capacity + workers; New validates this.
func WithCeiling(m uint) Option {
	return func(cfg *config) error { cfg.Ceiling = m; return nil }
}

// WithAdmissionTimeout sets how long Submit waits for an admission ticket (default 100ms).
func WithAdmissionTimeout(d time.Duration) Option {
	return func(cfg *config) error { cfg.AdmissionTimeout = d; return nil }
}

// WithEnqueueTimeout sets how long an admitted task waits for queue space (default 1s).
func WithEnqueueTimeout(d time.Duration) Option {
	return func(cfg *config) error { cfg.EnqueueTimeout = d; return nil }
}

// WithRejectionPolicy selects the behavior on admission timeout.
func WithRejectionPolicy(p RejectionPolicy) Option {
	return func(cfg *config) error { cfg.RejectionPolicy = p; return nil }
}

// WithWorkerRespawn keeps worker slots serving after a worker defect.
func WithWorkerRespawn() Option {
	return func(cfg *config) error { cfg.Respawn = true; return nil }
}

// WithLenientRelease treats a double ticket release as a worker defect instead of panicking.
func WithLenientRelease() Option {
	return func(cfg *config) error { cfg.LenientRelease = true; return nil }
}

// WithObserver subscribes o to executor events. May be given multiple times.
func WithObserver(o Observer) Option {
	return func(cfg *config) error {
		if o == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("observer", "WithObserver requires a non-nil observer"))
		}
		cfg.Observers = append(cfg.Observers, o)
		return nil
	}
}

// WithMetrics records executor metrics through p.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error { cfg.Metrics = p; return nil }
}
