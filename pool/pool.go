package pool

import (
	"context"
	"errors"
)

const Namespace = "workgate/pool"

var (
	ErrInvalidSize  = errors.New(Namespace + ": pool size must be greater than zero")
	ErrNilFunc      = errors.New(Namespace + ": source and handler must be non-nil")
	ErrWorkerDefect = errors.New(Namespace + ": worker exited abnormally")
)

// Source yields the next value for a worker. Any error ends the calling worker's loop
// normally; it is how a closed input is signaled.
type Source[T any] func(ctx context.Context) (T, error)

// Handler processes one value on the worker identified by workerID.
// Expected failures must be handled inside; a panic escaping a Handler is a defect.
type Handler[T any] func(workerID int, v T)

// DefectFunc is notified when a Handler panics. err wraps ErrWorkerDefect.
type DefectFunc func(workerID int, err error)

// Option configures a pool.
type Option func(*settings)

type settings struct {
	onDefect DefectFunc
	respawn  bool
}

// WithDefectHandler registers fn to be called for every worker defect.
func WithDefectHandler(fn DefectFunc) Option {
	return func(s *settings) { s.onDefect = fn }
}

// WithRespawn keeps a worker slot serving after a defect instead of retiring it.
func WithRespawn() Option {
	return func(s *settings) { s.respawn = true }
}
