package queue

import "errors"

const Namespace = "workgate/queue"

var (
	ErrInvalidCapacity = errors.New(Namespace + ": capacity must be greater than zero")
	ErrClosed          = errors.New(Namespace + ": queue is closed")
	ErrTimeout         = errors.New(Namespace + ": timed out waiting for queue")
)
