package workgate

import (
	"context"
	"fmt"
)

// Task is a unit of work executed by an Executor.
// It takes a context and returns a result of type R and an error.
// Use TaskFunc / TaskValue / TaskError helpers to adapt common function signatures.
//
// Example:
//
//	t := TaskFunc(func(ctx context.Context) (int, error) { return 42, nil })
//	_ = t
//
// A running task is never preempted: the executor waits for it to return even during
// an immediate shutdown. Long-running tasks should observe ctx.
type Task[R any] func(context.Context) (R, error)

// TaskFunc adapts func(ctx) (R, error) to Task[R].
func TaskFunc[R any](fn func(context.Context) (R, error)) Task[R] { return Task[R](fn) }

// TaskValue adapts func(ctx) R to Task[R].
func TaskValue[R any](fn func(context.Context) R) Task[R] {
	return func(ctx context.Context) (R, error) { return fn(ctx), nil }
}

// TaskError adapts func(ctx) error to Task[R].
// The returned Task yields the zero value of R alongside the error.
func TaskError[R any](fn func(context.Context) error) Task[R] {
	return func(ctx context.Context) (R, error) { var zero R; return zero, fn(ctx) }
}

// execTask runs t on the calling goroutine, converting a panic into an ErrTaskPanicked error.
func execTask[R any](ctx context.Context, t Task[R]) (result R, err error) {
	defer func() {
		if ePanic := recover(); ePanic != nil {
			var zero R
			result = zero
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, ePanic)
		}
	}()
	return t(ctx)
}
