package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errEOF = errors.New("eof")

// chanSource adapts a channel into a Source; a closed channel ends the worker loop.
func chanSource[T any](ch <-chan T) Source[T] {
	return func(ctx context.Context) (T, error) {
		select {
		case v, ok := <-ch:
			if !ok {
				var zero T
				return zero, errEOF
			}
			return v, nil
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

func waitDone(t *testing.T, p interface{ Done() <-chan struct{} }) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("pool did not finish")
	}
}

func TestNewFixed_Validation(t *testing.T) {
	noop := func(int, int) {}
	src := chanSource(make(chan int))

	_, err := NewFixed[int](0, src, noop)
	require.ErrorIs(t, err, ErrInvalidSize)

	_, err = NewFixed[int](1, nil, noop)
	require.ErrorIs(t, err, ErrNilFunc)

	_, err = NewFixed[int](1, src, nil)
	require.ErrorIs(t, err, ErrNilFunc)
}

func TestFixed_TableDriven(t *testing.T) {
	type want struct {
		handled  int64
		degraded bool
		defects  int64
		live     int
	}

	tests := []struct {
		name    string
		size    uint
		items   int
		respawn bool
		// handle is called for every item; it may panic to simulate a defect.
		handle func(id int, v int, handled *atomic.Int64)
		want   want
	}{
		{
			name:  "all items handled, workers exit on closed source",
			size:  3,
			items: 20,
			handle: func(_ int, _ int, handled *atomic.Int64) {
				handled.Add(1)
			},
			want: want{handled: 20, live: 0},
		},
		{
			name:  "defect retires one slot and marks pool degraded",
			size:  2,
			items: 10,
			handle: func(_ int, v int, handled *atomic.Int64) {
				if v == 3 {
					panic("boom")
				}
				handled.Add(1)
			},
			want: want{handled: 9, degraded: true, defects: 1, live: 0},
		},
		{
			name:    "defect with respawn keeps the slot serving",
			size:    1,
			items:   5,
			respawn: true,
			handle: func(_ int, v int, handled *atomic.Int64) {
				if v%2 == 0 {
					panic(errors.New("even"))
				}
				handled.Add(1)
			},
			want: want{handled: 2, degraded: false, defects: 3, live: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				handled atomic.Int64
				defects atomic.Int64
			)
			ch := make(chan int, tt.items)
			for i := 0; i < tt.items; i++ {
				ch <- i
			}
			close(ch)

			opts := []Option{WithDefectHandler(func(_ int, err error) {
				if !errors.Is(err, ErrWorkerDefect) {
					t.Errorf("defect error %v does not wrap ErrWorkerDefect", err)
				}
				defects.Add(1)
			})}
			if tt.respawn {
				opts = append(opts, WithRespawn())
			}

			p, err := NewFixed[int](tt.size, chanSource(ch), func(id int, v int) {
				tt.handle(id, v, &handled)
			}, opts...)
			require.NoError(t, err)

			p.Start(context.Background())
			p.Start(context.Background()) // no-op
			waitDone(t, p)

			require.Equal(t, tt.want.handled, handled.Load())
			require.Equal(t, tt.want.degraded, p.Degraded())
			require.Equal(t, tt.want.defects, defects.Load())
			require.Equal(t, tt.want.live, p.Live())
			require.Zero(t, p.Busy())
		})
	}
}

func TestFixed_RunsAtMostSizeConcurrently(t *testing.T) {
	const size = 3
	ch := make(chan int)

	var (
		running atomic.Int64
		maxSeen atomic.Int64
	)
	p, err := NewFixed[int](size, chanSource(ch), func(_ int, _ int) {
		n := running.Add(1)
		for {
			m := maxSeen.Load()
			if n <= m || maxSeen.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
	})
	require.NoError(t, err)
	require.Equal(t, size, p.Size())
	p.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 30; i++ {
			ch <- i
		}
		close(ch)
	}()
	wg.Wait()
	waitDone(t, p)

	require.LessOrEqual(t, maxSeen.Load(), int64(size))
	require.Greater(t, maxSeen.Load(), int64(1))
}

func TestFixed_DefectReportedAfterLiveDecrement(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 1

	liveAtReport := make(chan int, 1)
	var p *Fixed[int]
	p, err := NewFixed[int](1, chanSource(ch), func(int, int) { panic("defect") },
		WithDefectHandler(func(int, error) { liveAtReport <- p.Live() }))
	require.NoError(t, err)
	p.Start(context.Background())

	select {
	case live := <-liveAtReport:
		require.Zero(t, live)
	case <-time.After(time.Second):
		t.Fatalf("defect not reported")
	}
	waitDone(t, p)
}

func TestFixed_ContextCancelStopsIdleWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p, err := NewFixed[int](4, chanSource(make(chan int)), func(int, int) {})
	require.NoError(t, err)
	p.Start(ctx)
	require.Equal(t, 4, p.Live())

	cancel()
	waitDone(t, p)
	require.Zero(t, p.Live())
}
