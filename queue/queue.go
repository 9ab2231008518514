package queue

import (
	"context"
	"fmt"
	"sync"

	ring "github.com/eapache/queue"
)

// Item is a resident element of a Bounded queue tagged with its accept sequence number.
type Item[T any] struct {
	Seq   uint64
	Value T
}

// Bounded is a FIFO queue with a capacity fixed at construction.
// All methods are safe for concurrent use.
//
// Waiters are woken through broadcast channels which are closed and replaced
// under the lock, so every blocking call can also be bounded by a context.
type Bounded[T any] struct {
	mu       sync.Mutex
	items    *ring.Queue
	capacity int
	closed   bool
	seq      uint64

	// closed and replaced each time space frees up (or the queue is closed).
	space chan struct{}
	// closed and replaced each time an item is added (or the queue is closed).
	ready chan struct{}
}

// New creates a Bounded queue holding at most capacity items.
func New[T any](capacity int) (*Bounded[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &Bounded[T]{
		items:    ring.New(),
		capacity: capacity,
		space:    make(chan struct{}),
		ready:    make(chan struct{}),
	}, nil
}

// Enqueue appends v, waiting for free space until ctx is done.
//
// It returns the accept sequence number of v. On ErrTimeout or ErrClosed v was not
// accepted and remains the caller's responsibility.
func (q *Bounded[T]) Enqueue(ctx context.Context, v T) (uint64, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return 0, ErrClosed
		}
		if q.items.Length() < q.capacity {
			seq := q.push(v)
			q.mu.Unlock()
			return seq, nil
		}
		wait := q.space
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return 0, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
	}
}

// TryEnqueue appends v only if this does not require waiting.
//
// Returns:
//
//   - (seq, true, nil) if v was accepted.
//   - (0, false, nil) if the queue is full.
//   - (0, false, ErrClosed) if the queue is closed.
func (q *Bounded[T]) TryEnqueue(v T) (uint64, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, false, ErrClosed
	}
	if q.items.Length() >= q.capacity {
		return 0, false, nil
	}
	return q.push(v), true, nil
}

// push must be called with mu held and free space available.
func (q *Bounded[T]) push(v T) uint64 {
	q.seq++
	q.items.Add(Item[T]{Seq: q.seq, Value: v})
	broadcast(&q.ready)
	return q.seq
}

// Dequeue removes the oldest item, waiting until one is resident.
//
// A closed queue keeps delivering its residents; ErrClosed is returned only once
// it is both closed and empty. ErrTimeout is returned when ctx is done first.
func (q *Bounded[T]) Dequeue(ctx context.Context) (Item[T], error) {
	for {
		q.mu.Lock()
		if q.items.Length() > 0 {
			it := q.items.Remove().(Item[T])
			broadcast(&q.space)
			q.mu.Unlock()
			return it, nil
		}
		if q.closed {
			q.mu.Unlock()
			return Item[T]{}, ErrClosed
		}
		wait := q.ready
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return Item[T]{}, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
	}
}

// Drain removes and returns all resident items in FIFO order.
func (q *Bounded[T]) Drain() []Item[T] {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.items.Length()
	if n == 0 {
		return nil
	}
	out := make([]Item[T], 0, n)
	for q.items.Length() > 0 {
		out = append(out, q.items.Remove().(Item[T]))
	}
	broadcast(&q.space)
	return out
}

// Close rejects all future enqueues and wakes every waiter. Idempotent.
func (q *Bounded[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	broadcast(&q.space)
	broadcast(&q.ready)
}

// Closed reports whether Close has been called.
func (q *Bounded[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of resident items.
func (q *Bounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Cap returns the capacity fixed at construction.
func (q *Bounded[T]) Cap() int { return q.capacity }

func broadcast(ch *chan struct{}) {
	close(*ch)
	*ch = make(chan struct{})
}
