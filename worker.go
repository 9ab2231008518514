package workgate

import (
	"errors"
	"fmt"
	"time"

	"github.com/ygrebnov/workgate/queue"
)

// process runs one dequeued task on a worker. Task errors and panics are captured
// into the task's handle. Anything else that panics here (an observer, a double
// release) is a worker defect; the deferred settle makes sure the task's ticket is
// still released exactly once and its handle completed before the pool sees it.
func (e *Executor[R]) process(workerID int, it queue.Item[*job[R]]) {
	j := it.Value
	e.instr.queued.Add(-1)

	settled := false
	defer func() {
		if settled {
			return
		}
		if !j.ticket.Released() {
			e.release(j.ticket)
		}
		var zero R
		if j.handle.complete(zero, fmt.Errorf("%w: worker %d", ErrWorkerDefect, workerID), StatusFailed) {
			e.failed.Add(1)
			e.instr.failed.Add(1)
		}
	}()

	j.handle.setRunning()
	e.emit(Event{Kind: EventTaskStarted, Seq: it.Seq, Worker: workerID})

	start := time.Now()
	result, err := execTask(e.ctx, j.task)
	elapsed := time.Since(start)

	e.release(j.ticket)
	settled = true
	e.finish(j.handle, workerID, it.Seq, result, err, elapsed)
}

// finish completes a handle with the task outcome and records it.
func (e *Executor[R]) finish(h *Handle[R], workerID int, seq uint64, result R, err error, elapsed time.Duration) {
	e.instr.duration.Record(elapsed.Seconds())

	if err != nil {
		err = newTaskFailure(err, seq)
		h.complete(result, err, StatusFailed)
		e.failed.Add(1)
		e.instr.failed.Add(1)
		e.emit(Event{Kind: EventTaskFailed, Seq: seq, Worker: workerID, Duration: elapsed, Err: err})
		return
	}

	h.complete(result, nil, StatusSucceeded)
	e.completed.Add(1)
	e.instr.completed.Add(1)
	e.emit(Event{Kind: EventTaskCompleted, Seq: seq, Worker: workerID, Duration: elapsed})
}

// onDefect is called by the pool after a worker loop recovered from a defect.
func (e *Executor[R]) onDefect(workerID int, err error) {
	e.defects.Add(1)
	e.instr.defects.Add(1)

	if errors.Is(err, ErrDoubleRelease) && !e.config.LenientRelease {
		panic(err)
	}
	e.emit(Event{Kind: EventWorkerDefect, Worker: workerID, Err: err})

	if e.config.Respawn {
		return
	}
	e.degraded.Store(true)

	// with no worker left nothing would ever dequeue: drop residents so termination stays reachable
	if e.pool.Live() == 0 {
		e.queue.Close()
		e.discard(e.queue.Drain(), fmt.Errorf("%w: %w", ErrTaskDiscarded, ErrWorkerDefect))
	}
}
