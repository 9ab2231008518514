package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Fixed runs a fixed number of worker goroutines, each repeatedly pulling a value from
// a Source and passing it to a Handler. Workers are created once by Start and exit when
// the Source reports an error, or when a defect retires them.
type Fixed[T any] struct {
	size   int
	next   Source[T]
	handle Handler[T]
	settings

	startOnce sync.Once
	wg        sync.WaitGroup
	done      chan struct{}

	live     atomic.Int64
	busy     atomic.Int64
	degraded atomic.Bool
}

// NewFixed creates a pool of the given size. Call Start to launch the workers.
func NewFixed[T any](size uint, next Source[T], handle Handler[T], opts ...Option) (*Fixed[T], error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}
	if next == nil || handle == nil {
		return nil, ErrNilFunc
	}
	p := &Fixed[T]{
		size:   int(size),
		next:   next,
		handle: handle,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&p.settings)
		}
	}
	return p, nil
}

// Start launches all workers. ctx is passed to every Source call. Subsequent calls are no-ops.
func (p *Fixed[T]) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.live.Store(int64(p.size))
		p.wg.Add(p.size)
		for id := 0; id < p.size; id++ {
			go p.loop(ctx, id)
		}
		go func() {
			p.wg.Wait()
			close(p.done)
		}()
	})
}

func (p *Fixed[T]) loop(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		v, err := p.next(ctx)
		if err != nil {
			p.live.Add(-1)
			return
		}

		defect := p.run(id, v)
		if defect == nil {
			continue
		}
		if p.respawn {
			p.report(id, defect)
			continue
		}

		// retire this slot; Live must already reflect it when the defect is reported
		p.degraded.Store(true)
		p.live.Add(-1)
		p.report(id, defect)
		return
	}
}

func (p *Fixed[T]) run(id int, v T) (defect error) {
	p.busy.Add(1)
	defer p.busy.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				defect = fmt.Errorf("%w: worker %d: %w", ErrWorkerDefect, id, e)
				return
			}
			defect = fmt.Errorf("%w: worker %d: %v", ErrWorkerDefect, id, r)
		}
	}()

	p.handle(id, v)
	return nil
}

func (p *Fixed[T]) report(id int, err error) {
	if p.onDefect != nil {
		p.onDefect(id, err)
	}
}

// Wait blocks until every worker has exited. It returns immediately if Start was never called
// and no worker exists.
func (p *Fixed[T]) Wait() { p.wg.Wait() }

// Done is closed once every started worker has exited.
func (p *Fixed[T]) Done() <-chan struct{} { return p.done }

// Size returns the configured number of workers.
func (p *Fixed[T]) Size() int { return p.size }

// Live returns the number of workers still running their loop.
func (p *Fixed[T]) Live() int { return int(p.live.Load()) }

// Busy returns the number of workers currently inside the Handler.
func (p *Fixed[T]) Busy() int { return int(p.busy.Load()) }

// Degraded reports whether a defect has retired at least one worker.
func (p *Fixed[T]) Degraded() bool { return p.degraded.Load() }
