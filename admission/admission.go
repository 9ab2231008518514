package admission

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Controller bounds the number of in-flight tasks (queued or executing) by a ceiling.
// Each in-flight task holds one Ticket from admission until it finishes.
type Controller struct {
	sem     *semaphore.Weighted
	ceiling int64
	lenient bool

	inUse atomic.Int64
	peak  atomic.Int64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLenientRelease makes Ticket.Release return ErrDoubleRelease instead of panicking.
func WithLenientRelease() Option {
	return func(c *Controller) { c.lenient = true }
}

// New creates a Controller with the given ceiling (must be > 0).
func New(ceiling int64, opts ...Option) (*Controller, error) {
	if ceiling <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCeiling, ceiling)
	}
	c := &Controller{sem: semaphore.NewWeighted(ceiling), ceiling: ceiling}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Admit waits for a ticket until ctx is done.
func (c *Controller) Admit(ctx context.Context) (*Ticket, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdmissionTimeout, err)
	}
	return c.issue(), nil
}

// TryAdmit waits at most timeout for a ticket.
// A zero timeout never blocks; a negative timeout waits indefinitely.
func (c *Controller) TryAdmit(timeout time.Duration) (*Ticket, error) {
	switch {
	case timeout == 0:
		if !c.sem.TryAcquire(1) {
			return nil, ErrAdmissionTimeout
		}
		return c.issue(), nil
	case timeout < 0:
		return c.Admit(context.Background())
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Admit(ctx)
}

func (c *Controller) issue() *Ticket {
	n := c.inUse.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return &Ticket{c: c}
}

// InUse returns the number of tickets currently held.
func (c *Controller) InUse() int64 { return c.inUse.Load() }

// Peak returns the highest number of tickets held at once since construction.
func (c *Controller) Peak() int64 { return c.peak.Load() }

// Ceiling returns the configured maximum number of tickets.
func (c *Controller) Ceiling() int64 { return c.ceiling }

// Ticket is the right to have one task in flight.
type Ticket struct {
	c        *Controller
	released atomic.Bool
}

// Release returns the ticket to its controller.
// Releasing a ticket twice panics with ErrDoubleRelease, or returns it when the
// controller was built WithLenientRelease.
func (t *Ticket) Release() error {
	if !t.released.CompareAndSwap(false, true) {
		if t.c.lenient {
			return ErrDoubleRelease
		}
		panic(ErrDoubleRelease)
	}
	t.c.inUse.Add(-1)
	t.c.sem.Release(1)
	return nil
}

// Released reports whether Release has already succeeded.
func (t *Ticket) Released() bool { return t.released.Load() }
