package workgate

import (
	"fmt"
	"time"
)

// EventKind identifies an executor event.
type EventKind int

const (
	EventAdmitted EventKind = iota
	EventRejected
	EventTaskStarted
	EventTaskCompleted
	EventTaskFailed
	EventTaskDiscarded
	EventWorkerDefect
	EventShutdownRequested
	EventTerminated
)

func (k EventKind) String() string {
	switch k {
	case EventAdmitted:
		return "Admitted"
	case EventRejected:
		return "Rejected"
	case EventTaskStarted:
		return "TaskStarted"
	case EventTaskCompleted:
		return "TaskCompleted"
	case EventTaskFailed:
		return "TaskFailed"
	case EventTaskDiscarded:
		return "TaskDiscarded"
	case EventWorkerDefect:
		return "WorkerDefect"
	case EventShutdownRequested:
		return "ShutdownRequested"
	case EventTerminated:
		return "Terminated"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes something that happened inside an Executor.
// Fields that do not apply to a kind are left at their zero value, except Worker which is -1.
type Event struct {
	Kind     EventKind
	Executor string // executor ID
	Time     time.Time

	Seq      uint64        // task accept sequence number
	Worker   int           // worker ID, -1 for the submitting goroutine or no worker
	Duration time.Duration // task run time, for TaskCompleted and TaskFailed
	Mode     ShutdownMode  // for ShutdownRequested
	Err      error         // rejection, task, or defect error
}

// Observer receives executor events.
//
// Observe is called synchronously on the goroutine where the event happens: a worker,
// a submitter or the shutdown caller. Events raised on different goroutines are not
// ordered relative to each other. A panic raised by an observer on a worker is a worker defect.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

func (e *Executor[R]) emit(ev Event) {
	if len(e.config.Observers) == 0 {
		return
	}
	ev.Executor = e.id
	ev.Time = time.Now()
	for _, o := range e.config.Observers {
		o.Observe(ev)
	}
}
