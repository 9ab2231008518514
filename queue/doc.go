// Package queue provides Bounded, a fixed-capacity FIFO queue whose producers and
// consumers block with context-bounded waits.
//
// Every accepted item receives a sequence number, assigned under the queue lock at
// the moment of acceptance. Dequeue order always equals sequence order.
//
// Closing a queue rejects further enqueues but keeps delivering resident items to
// consumers until the queue is empty, which is what a graceful drain needs. Drain
// removes all residents at once, which is what an immediate shutdown needs.
package queue
