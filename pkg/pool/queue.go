// ============================================================================
// Beaver Pool - Bounded MPMC Job Queue
// ============================================================================
//
// Package: pkg/pool
// File: queue.go
// Function: A closeable, bounded, multi-producer multi-consumer queue of
//           jobs, satisfying spec component B (try/timed/blocking send and
//           recv, FIFO, idempotent close).
//
// The teacher's own Pool.Submit/Stop (internal/worker/worker_pool.go)
// documents a benign data race between a send and a concurrent close of
// the same channel: Submit double-checks a stopCh before sending to
// taskCh, but close(taskCh) and the send itself can still race under the
// Go race detector, just never with a wrong result. This queue sidesteps
// that family of races entirely by never closing the data channel at all:
// close() only ever closes a second, dedicated signal channel, so no send
// or recv here can ever land on a closed data channel.
//
// ============================================================================

package pool

import (
	"sync"
	"time"
)

// jobQueue is the bounded MPMC channel abstraction described in spec §4.2.
type jobQueue struct {
	ch     chan Job
	closed chan struct{}
	once   sync.Once
}

func newJobQueue(capacity int) *jobQueue {
	return &jobQueue{
		ch:     make(chan Job, capacity),
		closed: make(chan struct{}),
	}
}

// TrySend attempts a non-blocking send. Returns nil, a *FullError, or a
// *DisconnectedError.
func (q *jobQueue) TrySend(j Job) error {
	select {
	case <-q.closed:
		return &DisconnectedError{Job: j}
	default:
	}

	select {
	case q.ch <- j:
		return nil
	case <-q.closed:
		return &DisconnectedError{Job: j}
	default:
		return &FullError{Job: j}
	}
}

// Send blocks until the job is queued or the queue is closed.
func (q *jobQueue) Send(j Job) error {
	select {
	case q.ch <- j:
		return nil
	case <-q.closed:
		return &DisconnectedError{Job: j}
	}
}

// SendTimeout blocks up to d for room in the queue.
func (q *jobQueue) SendTimeout(j Job, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case q.ch <- j:
		return nil
	case <-q.closed:
		return &DisconnectedError{Job: j}
	case <-timer.C:
		return &TimeoutError{Job: j}
	}
}

// Recv blocks until a job is available or the queue is closed and drained.
func (q *jobQueue) Recv() (Job, error) {
	select {
	case j := <-q.ch:
		return j, nil
	default:
	}

	select {
	case j := <-q.ch:
		return j, nil
	case <-q.closed:
		select {
		case j := <-q.ch:
			return j, nil
		default:
			return nil, errDisconnected
		}
	}
}

// RecvTimeout blocks up to d for a job; distinguishes a timed-out wait from
// a closed-and-drained queue.
func (q *jobQueue) RecvTimeout(d time.Duration) (Job, error) {
	select {
	case j := <-q.ch:
		return j, nil
	default:
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case j := <-q.ch:
		return j, nil
	case <-q.closed:
		select {
		case j := <-q.ch:
			return j, nil
		default:
			return nil, errDisconnected
		}
	case <-timer.C:
		return nil, errTimeout
	}
}

// Close closes the send side. Idempotent.
func (q *jobQueue) Close() {
	q.once.Do(func() {
		close(q.closed)
	})
}

// Drain discards every job currently buffered, without blocking. Used by
// shutdown_now to unblock producers stuck in Send/SendTimeout and let
// workers observe disconnection promptly.
func (q *jobQueue) Drain() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

// Len reports the number of jobs currently buffered.
func (q *jobQueue) Len() int {
	return len(q.ch)
}

// IsOpen reports whether the queue still accepts sends.
func (q *jobQueue) IsOpen() bool {
	select {
	case <-q.closed:
		return false
	default:
		return true
	}
}
