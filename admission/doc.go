// Package admission implements a ticket-based admission controller.
//
// A Controller hands out at most Ceiling tickets at a time. A ticket is acquired
// before a task is queued and released exactly once after the task finishes.
// Releasing a ticket twice is a programming error and panics unless the controller
// was built WithLenientRelease.
package admission
