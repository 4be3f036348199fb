// ============================================================================
// Beaver Pool - Worker
// ============================================================================
//
// Package: pkg/pool
// File: worker.go
// Function: Owns one goroutine. Pulls jobs from the shared queue (or runs
//           an attached job first) and executes them until the pool tells
//           it to stop, then finalizes its share of the worker census.
//
// State machine (spec §4.3):
//   STARTED -> (mount?) -> RUNNING <-> (recv) -> EXITING -> (unmount?) -> GONE
//
// ============================================================================

package pool

import (
	"fmt"
)

// worker runs a single pool goroutine.
type worker struct {
	inner     *inner
	firstJob  Job // pre-attached overflow job, nil for a core spawn
}

func (w *worker) run() {
	defer w.exit()

	w.runHook(w.inner.config.Mount)

	if w.firstJob != nil {
		w.safeRun(w.firstJob)
		w.firstJob = nil
	}

	for {
		var job Job
		var err error

		if w.inner.config.Timeout > 0 {
			job, err = w.inner.queue.RecvTimeout(w.inner.config.Timeout)
		} else {
			job, err = w.inner.queue.Recv()
		}

		switch err {
		case nil:
			w.safeRun(job)
		case errTimeout:
			if w.inner.isWorkersOverflow() {
				return
			}
		case errDisconnected:
			return
		}
	}
}

// safeRun executes job.Run(), recovering and reporting any panic so the
// pool survives arbitrary user code (spec §4.3 step 3, §7.2).
func (w *worker) safeRun(job Job) {
	defer func() {
		if r := recover(); r != nil {
			w.inner.reportPanic(job, r)
		}
	}()
	job.Run()
}

// runHook calls an optional mount/unmount hook, swallowing any panic (spec
// §7.4: hook failures must never prevent teardown).
func (w *worker) runHook(hook func()) {
	if hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.inner.reportPanic(nil, fmt.Errorf("pool: hook panic: %v", r))
		}
	}()
	hook()
}

// exit always runs, even if the loop above panicked past safeRun somehow:
// unmount, decrement the census, and finalize if we were last out.
func (w *worker) exit() {
	w.runHook(w.inner.config.Unmount)

	phase, wc := w.inner.state.decWorkerCount()
	if wc == 0 && phase >= Shutdown {
		w.inner.finalizeInstance()
	}
}
