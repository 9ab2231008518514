package workgate

import (
	"errors"

	"github.com/ygrebnov/workgate/admission"
	"github.com/ygrebnov/workgate/pool"
)

const Namespace = "workgate"

var (
	// ErrAdmissionTimeout is returned by Submit when no admission ticket became available in time.
	// It is recoverable: the caller may retry or back off.
	ErrAdmissionTimeout = admission.ErrAdmissionTimeout

	// ErrQueueTimeout is returned by Submit when an admitted task found no queue space in time.
	ErrQueueTimeout = errors.New(Namespace + ": no queue space within timeout")

	// ErrExecutorClosed is returned once shutdown has begun.
	ErrExecutorClosed = errors.New(Namespace + ": executor is shut down")

	// ErrExecutorDegraded is returned by Submit after a worker defect retired a worker slot.
	ErrExecutorDegraded = errors.New(Namespace + ": executor is degraded by a worker defect")

	ErrNilTask       = errors.New(Namespace + ": task is nil")
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")

	// ErrTaskFailed is matched by every error a task returned or panicked with.
	ErrTaskFailed    = errors.New(Namespace + ": task failed")
	ErrTaskPanicked  = errors.New(Namespace + ": task execution panicked")
	ErrTaskDiscarded = errors.New(Namespace + ": task discarded before execution")

	// ErrWorkerDefect is delivered to the handle of a task whose worker failed outside the task itself.
	ErrWorkerDefect = pool.ErrWorkerDefect

	// ErrDoubleRelease reports an admission ticket released twice.
	ErrDoubleRelease = admission.ErrDoubleRelease

	ErrResultTimeout = errors.New(Namespace + ": result not available within timeout")
	ErrStillRunning  = errors.New(Namespace + ": executor has not terminated within timeout")
)
