package workgate

import "fmt"

// State is the lifecycle state of an Executor.
// Transitions are monotonic: StateRunning -> StateShuttingDown -> StateTerminated.
type State int32

const (
	StateRunning State = iota
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateTerminated:
		return "Terminated"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ShutdownMode selects what happens to queued tasks on Shutdown.
type ShutdownMode int

const (
	// Graceful stops admissions and lets every queued and running task finish.
	Graceful ShutdownMode = iota
	// Immediate stops admissions and discards queued tasks; running tasks still finish.
	Immediate
)

func (m ShutdownMode) String() string {
	switch m {
	case Graceful:
		return "graceful"
	case Immediate:
		return "immediate"
	default:
		return fmt.Sprintf("ShutdownMode(%d)", int(m))
	}
}

// RejectionPolicy decides what Submit does when admission times out.
type RejectionPolicy int

const (
	// RejectAbort returns the admission error to the caller.
	RejectAbort RejectionPolicy = iota
	// RejectCallerRuns executes the task on the submitting goroutine and returns its completed handle.
	// It is not counted as a rejection. Tasks are never run by the caller once the executor is
	// closed or degraded, including when that happened while the submitter waited for admission.
	RejectCallerRuns
)

func (p RejectionPolicy) String() string {
	switch p {
	case RejectAbort:
		return "abort"
	case RejectCallerRuns:
		return "caller-runs"
	default:
		return fmt.Sprintf("RejectionPolicy(%d)", int(p))
	}
}
