package workgate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Status is the progress of a single submitted task.
type Status int32

const (
	StatusQueued    Status = iota // accepted, waiting in the queue
	StatusRunning                 // picked up by a worker
	StatusSucceeded               // returned a nil error
	StatusFailed                  // returned an error, panicked or hit a worker defect
	StatusDiscarded               // dropped from the queue by an immediate shutdown
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "Queued"
	case StatusRunning:
		return "Running"
	case StatusSucceeded:
		return "Succeeded"
	case StatusFailed:
		return "Failed"
	case StatusDiscarded:
		return "Discarded"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Handle is the single-use result handle of a submitted task.
// All methods are safe for concurrent use.
type Handle[R any] struct {
	seq    atomic.Uint64
	status atomic.Int32

	done chan struct{}
	once sync.Once

	// written once before done is closed
	result R
	err    error
}

func newHandle[R any]() *Handle[R] {
	return &Handle[R]{done: make(chan struct{})}
}

// complete records the outcome. Only the first call has an effect.
func (h *Handle[R]) complete(result R, err error, st Status) bool {
	completed := false
	h.once.Do(func() {
		h.result, h.err = result, err
		h.status.Store(int32(st))
		close(h.done)
		completed = true
	})
	return completed
}

func (h *Handle[R]) setRunning() { h.status.CompareAndSwap(int32(StatusQueued), int32(StatusRunning)) }

// Get waits at most timeout for the outcome and returns the task's result or error.
// A zero timeout never blocks; a negative timeout waits indefinitely.
// ErrResultTimeout is returned if the task has not finished in time.
func (h *Handle[R]) Get(timeout time.Duration) (R, error) {
	switch {
	case timeout == 0:
		select {
		case <-h.done:
			return h.result, h.err
		default:
			var zero R
			return zero, ErrResultTimeout
		}
	case timeout < 0:
		<-h.done
		return h.result, h.err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.done:
		return h.result, h.err
	case <-timer.C:
		var zero R
		return zero, ErrResultTimeout
	}
}

// Wait blocks until the outcome is available or ctx is done.
func (h *Handle[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		var zero R
		return zero, fmt.Errorf("%w: %w", ErrResultTimeout, ctx.Err())
	}
}

// IsDone reports whether the outcome is available.
func (h *Handle[R]) IsDone() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done is closed once the outcome is available.
func (h *Handle[R]) Done() <-chan struct{} { return h.done }

// Seq returns the accept sequence number of the task (1-based, in queue order).
// It is zero for a task run by the caller under RejectCallerRuns.
func (h *Handle[R]) Seq() uint64 { return h.seq.Load() }

// Status returns the current progress of the task.
func (h *Handle[R]) Status() Status { return Status(h.status.Load()) }
