package workgate_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ygrebnov/workgate"
	"github.com/ygrebnov/workgate/metrics"
)

// ExampleNew shows the basic submit / get / shutdown cycle.
func ExampleNew() {
	e, err := workgate.New[int](
		context.Background(),
		workgate.WithWorkers(2),
		workgate.WithQueueCapacity(1),
		workgate.WithCeiling(3),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	h, err := e.Submit(workgate.TaskValue[int](func(context.Context) int { return 21 * 2 }))
	if err != nil {
		fmt.Println(err)
		return
	}
	v, err := h.Get(time.Second)
	fmt.Println(v, err)

	fmt.Println(e.ShutdownAndWait(time.Second), e.State())

	// Output:
	// 42 <nil>
	// <nil> Terminated
}

// ExampleExecutor_TrySubmit shows a submission being turned away once every admission
// ticket is held.
func ExampleExecutor_TrySubmit() {
	e, _ := workgate.New[string](
		context.Background(),
		workgate.WithWorkers(1),
		workgate.WithQueueCapacity(1),
	)

	gate := make(chan struct{})
	wait := workgate.TaskFunc[string](func(context.Context) (string, error) { <-gate; return "done", nil })

	_, _ = e.Submit(wait)
	_, _ = e.Submit(wait)
	_, err := e.TrySubmit(wait)
	fmt.Println(errors.Is(err, workgate.ErrAdmissionTimeout))

	close(gate)
	_ = e.ShutdownAndWait(time.Second)

	// Output:
	// true
}

// ExampleExecutor_Shutdown shows an immediate shutdown discarding queued tasks.
func ExampleExecutor_Shutdown() {
	e, _ := workgate.New[int](context.Background(), workgate.WithWorkers(1), workgate.WithQueueCapacity(4))

	started, gate := make(chan struct{}), make(chan struct{})
	running, _ := e.Submit(func(context.Context) (int, error) {
		close(started)
		<-gate
		return 1, nil
	})
	<-started
	queued, _ := e.Submit(workgate.TaskValue[int](func(context.Context) int { return 2 }))

	_ = e.Shutdown(workgate.Immediate)
	_, err := queued.Get(0)
	fmt.Println(queued.Status(), errors.Is(err, workgate.ErrTaskDiscarded))

	close(gate)
	_ = e.AwaitTermination(workgate.NoTimeout)
	v, _ := running.Get(0)
	fmt.Println(running.Status(), v)

	// Output:
	// Discarded true
	// Succeeded 1
}

// ExampleWithMetrics records executor metrics into the in-memory BasicProvider.
func ExampleWithMetrics() {
	p := metrics.NewBasicProvider()
	e, _ := workgate.New[int](context.Background(), workgate.WithMetrics(p))

	h1, _ := e.Submit(workgate.TaskValue[int](func(context.Context) int { return 1 }))
	h2, _ := e.Submit(workgate.TaskError[int](func(context.Context) error { return errors.New("failed") }))
	_, _ = h1.Get(time.Second)
	_, _ = h2.Get(time.Second)
	_ = e.ShutdownAndWait(time.Second)

	fmt.Println(p.CounterValue("workgate_tasks_completed_total"), p.CounterValue("workgate_tasks_failed_total"))

	// Output:
	// 1 1
}

// ExampleInvokeAll waits for a batch of tasks and returns results in input order.
func ExampleInvokeAll() {
	e, _ := workgate.New[int](context.Background(), workgate.WithWorkers(3))
	defer func() { _ = e.ShutdownAndWait(time.Second) }()

	tasks := make([]workgate.Task[int], 0, 5)
	for i := 1; i <= 5; i++ {
		tasks = append(tasks, workgate.TaskValue[int](func(context.Context) int { return i * i }))
	}

	results, err := workgate.InvokeAll(context.Background(), e, tasks)
	fmt.Println(results, err)

	// Output:
	// [1 4 9 16 25] <nil>
}
