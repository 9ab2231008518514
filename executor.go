package workgate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ygrebnov/workgate/admission"
	"github.com/ygrebnov/workgate/pool"
	"github.com/ygrebnov/workgate/queue"
)

// Executor runs tasks on a fixed pool of workers fed by a bounded FIFO queue.
// Every queued or running task holds one admission ticket; the number of tickets
// is capped by the configured ceiling.
// Executor is a concrete struct; methods are safe for concurrent use.
type Executor[R any] struct {
	// noCopy prevents accidental copying of the executor.
	//go:nocopy
	nc noCopy

	id     string
	config *config
	ctx    context.Context // passed to tasks

	queue     *queue.Bounded[*job[R]]
	admission *admission.Controller
	pool      *pool.Fixed[queue.Item[*job[R]]]
	instr     instruments

	// mu orders state transitions against submitters registering in submitting.
	mu         sync.RWMutex
	state      atomic.Int32
	mode       ShutdownMode
	submitting sync.WaitGroup
	discarding sync.WaitGroup
	degraded   atomic.Bool

	lifecycle  *lifecycleCoordinator
	terminated chan struct{}

	admitted  atomic.Int64
	rejected  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	discarded atomic.Int64
	defects   atomic.Int64
}

// job is a queued task together with its result handle and admission ticket.
type job[R any] struct {
	task   Task[R]
	handle *Handle[R]
	ticket *admission.Ticket
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates an Executor and starts its workers.
// ctx is passed to every task; cancelling it does not stop the executor.
func New[R any](ctx context.Context, opts ...Option) (*Executor[R], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	q, err := queue.New[*job[R]](int(cfg.QueueCapacity))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var admOpts []admission.Option
	if cfg.LenientRelease {
		admOpts = append(admOpts, admission.WithLenientRelease())
	}
	adm, err := admission.New(int64(cfg.Ceiling), admOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := &Executor[R]{
		id:         uuid.NewString(),
		config:     &cfg,
		ctx:        ctx,
		queue:      q,
		admission:  adm,
		instr:      newInstruments(cfg.Metrics),
		terminated: make(chan struct{}),
	}

	poolOpts := []pool.Option{pool.WithDefectHandler(e.onDefect)}
	if cfg.Respawn {
		poolOpts = append(poolOpts, pool.WithRespawn())
	}
	p, err := pool.NewFixed[queue.Item[*job[R]]](cfg.Workers, q.Dequeue, e.process, poolOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	e.pool = p
	e.lifecycle = newLifecycleCoordinator(
		e.submitting.Wait,
		p.Wait,
		e.markTerminated,
		func() { e.emit(Event{Kind: EventTerminated, Worker: -1}) },
		func() { close(e.terminated) },
	)

	// workers stop when the queue is closed and empty, never because ctx is cancelled
	p.Start(context.WithoutCancel(ctx))
	return e, nil
}

// Submit admits and enqueues a task using the configured admission and enqueue timeouts.
//
// Errors:
//
//   - ErrAdmissionTimeout if no ticket became available (unless RejectCallerRuns runs the task).
//   - ErrQueueTimeout if the admitted task found no queue space in time.
//   - ErrExecutorClosed after Shutdown; ErrExecutorDegraded after a worker defect.
//   - ErrNilTask for a nil task.
func (e *Executor[R]) Submit(t Task[R]) (*Handle[R], error) {
	return e.submit(context.Background(), t, e.config.AdmissionTimeout)
}

// SubmitContext is Submit with both waits additionally bounded by ctx.
func (e *Executor[R]) SubmitContext(ctx context.Context, t Task[R]) (*Handle[R], error) {
	return e.submit(ctx, t, e.config.AdmissionTimeout)
}

// TrySubmit is Submit without waiting for an admission ticket.
func (e *Executor[R]) TrySubmit(t Task[R]) (*Handle[R], error) {
	return e.submit(context.Background(), t, 0)
}

func (e *Executor[R]) submit(ctx context.Context, t Task[R], admissionTimeout time.Duration) (*Handle[R], error) {
	if t == nil {
		return nil, e.reject(ErrNilTask)
	}
	if err := e.enter(); err != nil {
		return nil, e.reject(err)
	}
	defer e.submitting.Done()

	ticket, err := e.admit(ctx, admissionTimeout)
	if err != nil {
		if e.config.RejectionPolicy == RejectCallerRuns && errors.Is(err, ErrAdmissionTimeout) {
			// the executor may have been shut down or degraded while this call waited
			if herr := e.healthy(); herr != nil {
				return nil, e.reject(herr)
			}
			return e.runInCaller(t), nil
		}
		return nil, e.reject(err)
	}
	e.instr.inflight.Add(1)

	j := &job[R]{task: t, handle: newHandle[R](), ticket: ticket}

	enqCtx, cancel := withTimeout(ctx, e.config.EnqueueTimeout)
	defer cancel()

	seq, err := e.queue.Enqueue(enqCtx, j)
	if err != nil {
		e.release(ticket)
		if errors.Is(err, queue.ErrClosed) {
			return nil, e.reject(ErrExecutorClosed)
		}
		return nil, e.reject(fmt.Errorf("%w: %w", ErrQueueTimeout, err))
	}
	j.handle.seq.Store(seq)

	e.admitted.Add(1)
	e.instr.admitted.Add(1)
	e.instr.queued.Add(1)
	e.emit(Event{Kind: EventAdmitted, Seq: seq, Worker: -1})
	return j.handle, nil
}

// enter registers a submit call while the executor is running and healthy.
func (e *Executor[R]) enter() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if err := e.healthy(); err != nil {
		return err
	}
	e.submitting.Add(1)
	return nil
}

// healthy reports why the executor no longer accepts work, or nil if it does.
func (e *Executor[R]) healthy() error {
	if State(e.state.Load()) != StateRunning {
		return ErrExecutorClosed
	}
	if e.degraded.Load() {
		return ErrExecutorDegraded
	}
	return nil
}

func (e *Executor[R]) admit(ctx context.Context, timeout time.Duration) (*admission.Ticket, error) {
	if timeout == 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAdmissionTimeout, err)
		}
		return e.admission.TryAdmit(0)
	}
	actx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	return e.admission.Admit(actx)
}

func (e *Executor[R]) reject(err error) error {
	e.rejected.Add(1)
	e.instr.rejected.Add(1)
	e.emit(Event{Kind: EventRejected, Worker: -1, Err: err})
	return err
}

// runInCaller executes t on the submitting goroutine without a ticket.
func (e *Executor[R]) runInCaller(t Task[R]) *Handle[R] {
	h := newHandle[R]()
	h.setRunning()
	e.emit(Event{Kind: EventTaskStarted, Worker: -1})
	start := time.Now()
	result, err := execTask(e.ctx, t)
	e.finish(h, -1, 0, result, err, time.Since(start))
	return h
}

// release returns a ticket exactly once. A double release surfaces as a panic:
// from the controller in strict mode, from here in lenient mode, so that it is
// reported as a worker defect.
func (e *Executor[R]) release(t *admission.Ticket) {
	if err := t.Release(); err != nil {
		panic(err)
	}
	e.instr.inflight.Add(-1)
}

// discard completes the handles of tasks removed from the queue without running them.
func (e *Executor[R]) discard(items []queue.Item[*job[R]], cause error) {
	for _, it := range items {
		j := it.Value
		e.instr.queued.Add(-1)
		e.release(j.ticket)
		var zero R
		j.handle.complete(zero, cause, StatusDiscarded)
		e.discarded.Add(1)
		e.instr.discarded.Add(1)
		e.emit(Event{Kind: EventTaskDiscarded, Seq: it.Seq, Worker: -1, Err: cause})
	}
}

// Shutdown stops admissions and moves the executor to StateShuttingDown.
//
// Graceful lets queued and running tasks finish. Immediate discards queued tasks;
// their handles fail with ErrTaskDiscarded. Running tasks always finish.
// Calling Shutdown(Immediate) during a graceful shutdown escalates it; other repeated
// calls are no-ops. After termination Shutdown returns ErrExecutorClosed.
func (e *Executor[R]) Shutdown(mode ShutdownMode) error {
	e.mu.Lock()
	switch State(e.state.Load()) {
	case StateTerminated:
		e.mu.Unlock()
		return ErrExecutorClosed
	case StateShuttingDown:
		escalate := mode == Immediate && e.mode == Graceful
		if escalate {
			e.mode = Immediate
			e.discarding.Add(1)
		}
		e.mu.Unlock()
		if escalate {
			defer e.discarding.Done()
			e.emit(Event{Kind: EventShutdownRequested, Worker: -1, Mode: Immediate})
			e.discard(e.queue.Drain(), ErrTaskDiscarded)
		}
		return nil
	}
	e.state.Store(int32(StateShuttingDown))
	e.mode = mode
	e.mu.Unlock()

	e.emit(Event{Kind: EventShutdownRequested, Worker: -1, Mode: mode})
	e.queue.Close()
	if mode == Immediate {
		e.discard(e.queue.Drain(), ErrTaskDiscarded)
	}
	go e.lifecycle.Run()
	return nil
}

// markTerminated is the last state transition. Holding mu keeps an escalating Shutdown
// from starting a discard that termination would not wait for.
func (e *Executor[R]) markTerminated() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.discarding.Wait()
	e.state.Store(int32(StateTerminated))
}

// AwaitTermination waits at most timeout for the executor to reach StateTerminated.
// A zero timeout never blocks; NoTimeout waits indefinitely. It returns ErrStillRunning on timeout.
func (e *Executor[R]) AwaitTermination(timeout time.Duration) error {
	switch {
	case timeout == 0:
		select {
		case <-e.terminated:
			return nil
		default:
			return ErrStillRunning
		}
	case timeout < 0:
		<-e.terminated
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-e.terminated:
		return nil
	case <-timer.C:
		return ErrStillRunning
	}
}

// ShutdownAndWait shuts down gracefully and waits up to timeout for termination.
// If the executor is still running it escalates to an immediate shutdown and waits up
// to timeout again. It returns ErrStillRunning if running tasks outlast both waits.
func (e *Executor[R]) ShutdownAndWait(timeout time.Duration) error {
	if err := e.Shutdown(Graceful); err != nil {
		if errors.Is(err, ErrExecutorClosed) {
			return nil
		}
		return err
	}
	if err := e.AwaitTermination(timeout); err == nil {
		return nil
	}
	_ = e.Shutdown(Immediate)
	return e.AwaitTermination(timeout)
}

// Terminated is closed once the executor reaches StateTerminated.
func (e *Executor[R]) Terminated() <-chan struct{} { return e.terminated }

// State returns the current lifecycle state.
func (e *Executor[R]) State() State { return State(e.state.Load()) }

// ID returns the executor's unique identifier, also carried by its events.
func (e *Executor[R]) ID() string { return e.id }

// withTimeout derives a context bounded by timeout; NoTimeout adds no bound.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout < 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
