// Package workgate provides a bounded concurrent task executor with admission control.
//
// An Executor is built from three parts:
//   - a fixed pool of worker goroutines (package pool),
//   - a bounded FIFO queue holding accepted tasks until a worker is free (package queue),
//   - an admission controller capping in-flight tasks, queued or executing (package admission).
//
// Constructor
//   - New(ctx, opts ...Option) validates the configuration and starts the workers.
//
// Defaults
// Unless overridden, the following defaults apply to a newly created instance:
//   - Workers: 4
//   - QueueCapacity: 64
//   - Ceiling: QueueCapacity + Workers (lower values are rejected)
//   - AdmissionTimeout: 100ms
//   - EnqueueTimeout: 1s
//   - RejectionPolicy: RejectAbort
//
// Submission
// Submit acquires an admission ticket, enqueues the task and returns a Handle. Tasks are
// dequeued in the order they were accepted; completion order across workers is not
// guaranteed. A task error or panic is delivered through its Handle and never affects
// the worker that ran it.
//
// Lifecycle
// An Executor moves StateRunning -> StateShuttingDown -> StateTerminated. Shutdown(Graceful)
// lets queued tasks run; Shutdown(Immediate) discards them. Running tasks are never
// preempted. AwaitTermination waits for StateTerminated, at which point every worker has
// exited and every admission ticket has been released.
//
// Observability
// Executors emit Events to registered Observers (see package eventlog for a structured
// logger) and record metrics through a metrics.Provider.
package workgate
