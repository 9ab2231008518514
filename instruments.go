package workgate

import "github.com/ygrebnov/workgate/metrics"

// instruments are the metric instruments an Executor records into.
type instruments struct {
	admitted  metrics.Counter
	rejected  metrics.Counter
	completed metrics.Counter
	failed    metrics.Counter
	discarded metrics.Counter
	defects   metrics.Counter
	inflight  metrics.UpDownCounter
	queued    metrics.UpDownCounter
	duration  metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		admitted: p.Counter("workgate_tasks_admitted_total",
			metrics.WithDescription("Tasks accepted into the queue")),
		rejected: p.Counter("workgate_tasks_rejected_total",
			metrics.WithDescription("Submissions rejected by admission, queue timeout or lifecycle state")),
		completed: p.Counter("workgate_tasks_completed_total",
			metrics.WithDescription("Tasks that returned without error")),
		failed: p.Counter("workgate_tasks_failed_total",
			metrics.WithDescription("Tasks that returned an error, panicked or hit a worker defect")),
		discarded: p.Counter("workgate_tasks_discarded_total",
			metrics.WithDescription("Queued tasks dropped without execution")),
		defects: p.Counter("workgate_worker_defects_total",
			metrics.WithDescription("Workers that failed outside task execution")),
		inflight: p.UpDownCounter("workgate_tasks_inflight",
			metrics.WithDescription("Admission tickets currently held")),
		queued: p.UpDownCounter("workgate_queue_length",
			metrics.WithDescription("Tasks waiting in the queue")),
		duration: p.Histogram("workgate_task_duration_seconds",
			metrics.WithDescription("Task execution time"), metrics.WithUnit("seconds")),
	}
}
