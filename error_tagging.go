package workgate

import (
	"errors"
	"fmt"
)

// TaskFailure is the failure outcome of a task, as delivered by its Handle.
// It wraps the task's own error and carries the task's accept sequence number.
// errors.Is(err, ErrTaskFailed) holds for every TaskFailure.
type TaskFailure struct {
	Seq uint64
	Err error
}

func newTaskFailure(err error, seq uint64) error {
	if err == nil {
		return nil
	}
	return &TaskFailure{Seq: seq, Err: err}
}

func (e *TaskFailure) Error() string { return e.Err.Error() }

func (e *TaskFailure) Unwrap() []error { return []error{ErrTaskFailed, e.Err} }

func (e *TaskFailure) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "task(seq=%d): %+v", e.Seq, e.Err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractTaskSeq returns the accept sequence number of the task that produced err, if present.
func ExtractTaskSeq(err error) (uint64, bool) {
	var te *TaskFailure
	if errors.As(err, &te) {
		return te.Seq, true
	}
	return 0, false
}
