package workgate

// Stats is a point-in-time snapshot of an Executor.
// Fields are read independently and may be mutually inconsistent under load.
type Stats struct {
	ID       string
	State    State
	Degraded bool

	Workers     int // configured worker count
	LiveWorkers int // workers still serving
	BusyWorkers int // workers currently running a task

	Queued        int // tasks waiting in the queue
	QueueCapacity int

	InFlight     int64 // admission tickets currently held
	PeakInFlight int64
	Ceiling      int64

	Admitted  int64
	Rejected  int64 // submissions returned with an error; tasks run by the caller are not included
	Completed int64
	Failed    int64
	Discarded int64
	Defects   int64
}

// Stats returns a snapshot of the executor counters.
func (e *Executor[R]) Stats() Stats {
	return Stats{
		ID:            e.id,
		State:         e.State(),
		Degraded:      e.degraded.Load(),
		Workers:       e.pool.Size(),
		LiveWorkers:   e.pool.Live(),
		BusyWorkers:   e.pool.Busy(),
		Queued:        e.queue.Len(),
		QueueCapacity: e.queue.Cap(),
		InFlight:      e.admission.InUse(),
		PeakInFlight:  e.admission.Peak(),
		Ceiling:       e.admission.Ceiling(),
		Admitted:      e.admitted.Load(),
		Rejected:      e.rejected.Load(),
		Completed:     e.completed.Load(),
		Failed:        e.failed.Load(),
		Discarded:     e.discarded.Load(),
		Defects:       e.defects.Load(),
	}
}
