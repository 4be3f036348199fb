// ============================================================================
// Beaver Pool - Inner (pool core)
// ============================================================================
//
// Package: pkg/pool
// File: inner.go
// Function: Holds the config, queue, atomic state, and termination
//           condition variable shared by every handle and worker. Owns the
//           add_worker provisioning protocol and finalize_instance.
//
// Grounded line-for-line on original_source/src/core.rs's
// Inner::add_worker / Inner::finalize_instance.
//
// ============================================================================

package pool

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// inner is shared by every Pool, Submitter and worker for a given pool
// instance. It is never exposed directly; callers only ever see Pool or
// Submitter, both thin handles wrapping a *inner.
type inner struct {
	config Config
	queue  *jobQueue
	state  *state

	terminationMu   sync.Mutex
	terminationCond *sync.Cond
}

func newInner(cfg Config) *inner {
	in := &inner{
		config: cfg,
		queue:  newJobQueue(cfg.QueueCapacity),
		state:  newState(Running, 0),
	}
	in.terminationCond = sync.NewCond(&in.terminationMu)

	if cfg.StackSize > 0 {
		log.WithField("stack_size", cfg.StackSize).
			Debug("pool: stack_size is advisory only on the Go runtime")
	}
	return in
}

// addWorker implements spec §4.4's add_worker protocol. core is true for a
// prestart/opportunistic spawn bounded by config.Size; false for an
// overflow spawn (bounded by config.MaxSize) carrying an attached job that
// bypasses the queue entirely.
func (in *inner) addWorker(firstJob Job) error {
	core := firstJob == nil

	word := in.state.loadWord()

retry:
	for {
		phase, _ := unpack(word)

		if phase >= Stop {
			return &DisconnectedError{Job: firstJob}
		}
		if phase == Shutdown && firstJob != nil && in.queue.Len() == 0 {
			return &DisconnectedError{Job: firstJob}
		}

		for {
			_, wc := unpack(word)

			var target uint32
			if core {
				target = in.config.Size
			} else {
				target = in.config.MaxSize
			}

			if wc >= CAPACITY || wc >= target {
				return &FullError{Job: firstJob}
			}

			next, ok := in.state.compareAndIncWorkerCount(word)
			if ok {
				word = next
				break retry
			}

			word = next
			newPhase, _ := unpack(word)
			if newPhase != phase {
				continue retry
			}
		}
	}

	spawn := in.config.spawn
	if spawn == nil {
		spawn = defaultSpawn
	}

	w := &worker{inner: in, firstJob: firstJob}
	if err := spawn(w.run); err != nil {
		in.state.decWorkerCount()
		return &FullError{Job: firstJob}
	}
	return nil
}

// finalizeInstance moves Shutdown/Stop -> Tidying -> Terminated and wakes
// every await_termination waiter. Safe to call from any worker or from
// shutdown/shutdownNow; only the caller that wins the Tidying CAS proceeds
// to terminate.
func (in *inner) finalizeInstance() {
	if in.state.tryTransitionToTidying() {
		in.state.transitionToTerminated()

		in.terminationMu.Lock()
		in.terminationCond.Broadcast()
		in.terminationMu.Unlock()
	}
}

// isWorkersOverflow reports whether the live worker count exceeds the core
// target, i.e. whether an idle worker is itself overflow.
func (in *inner) isWorkersOverflow() bool {
	_, wc := in.state.load()
	return wc > in.config.Size
}

func (in *inner) reportPanic(job Job, recovered any) {
	if in.config.OnPanic != nil {
		in.config.OnPanic(job, recovered)
		return
	}
	log.WithField("recovered", recovered).Warn("pool: recovered panic in job or hook")
}
