package workgate

import (
	"context"
	"errors"
)

// InvokeAll submits every task to e and waits for all of them.
//
// Semantics:
//
//   - Results are returned in input order; a failed or unsubmitted task leaves the zero value.
//   - Submission uses SubmitContext(ctx, ...); a rejected submission is recorded and the
//     remaining tasks are still attempted.
//   - Waiting is bounded by ctx; tasks still running when ctx is done keep running.
//   - The returned error is errors.Join of all submission and task errors (nil if none).
func InvokeAll[R any](ctx context.Context, e *Executor[R], tasks []Task[R]) ([]R, error) {
	handles := make([]*Handle[R], len(tasks))
	errs := make([]error, 0, len(tasks))

	for i, t := range tasks {
		h, err := e.SubmitContext(ctx, t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		handles[i] = h
	}

	results := make([]R, len(tasks))
	for i, h := range handles {
		if h == nil {
			continue
		}
		r, err := h.Wait(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results[i] = r
	}
	return results, errors.Join(errs...)
}
