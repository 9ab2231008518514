package workgate

import (
	"sync"
)

// lifecycleCoordinator encapsulates the termination sequence of an Executor.
// It is a wiring helper: it doesn't own the queue, pool or channels; it orchestrates
// waits and the final transition in a deterministic order.
//
// Run() is safe for concurrent calls; the sequence executes exactly once.
type lifecycleCoordinator struct {
	waitSubmitters  func()
	waitWorkers     func()
	markTerminated  func()
	notify          func()
	closeTerminated func()

	once sync.Once
}

func newLifecycleCoordinator(
	waitSubmitters func(),
	waitWorkers func(),
	markTerminated func(),
	notify func(),
	closeTerminated func(),
) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		waitSubmitters:  waitSubmitters,
		waitWorkers:     waitWorkers,
		markTerminated:  markTerminated,
		notify:          notify,
		closeTerminated: closeTerminated,
	}
}

// Run executes the termination sequence exactly once:
// 1) wait for in-flight submit calls; each either enqueued or released its ticket
// 2) wait for every worker to exit; the closed queue is empty at this point
// 3) mark the executor terminated
// 4) notify observers
// 5) close the terminated channel, releasing AwaitTermination callers
func (lc *lifecycleCoordinator) Run() {
	lc.once.Do(func() {
		if lc.waitSubmitters != nil {
			lc.waitSubmitters()
		}
		if lc.waitWorkers != nil {
			lc.waitWorkers()
		}
		if lc.markTerminated != nil {
			lc.markTerminated()
		}
		if lc.notify != nil {
			lc.notify()
		}
		if lc.closeTerminated != nil {
			lc.closeTerminated()
		}
	})
}
