// ============================================================================
// Beaver Pool - Lifecycle Encoding
// ============================================================================
//
// Package: pkg/pool
// File: lifecycle.go
// Function: Packs the pool's lifecycle phase and live worker count into a
//           single atomic word, and provides the CAS helpers every other
//           component in this package builds on.
//
// Encoding:
//   Low workerCountBits bits  -> worker count, 0..capacity
//   Remaining high bits       -> lifecycle phase ordinal
//
// All mutating operations are compare-and-swap on the packed word; there is
// no mutex anywhere in this file. Reads use Load (acquire); CAS failures
// return the freshly observed word so callers can retry without a second
// load.
//
// ============================================================================

package pool

import (
	"fmt"
	"sync/atomic"
)

// Lifecycle is the ordered pool phase. Phases only ever move forward.
type Lifecycle uint8

const (
	Running Lifecycle = iota
	Shutdown
	Stop
	Tidying
	Terminated
)

func (l Lifecycle) String() string {
	switch l {
	case Running:
		return "running"
	case Shutdown:
		return "shutdown"
	case Stop:
		return "stop"
	case Tidying:
		return "tidying"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("lifecycle(%d)", uint8(l))
	}
}

const (
	workerCountBits = 24
	workerCountMask = 1<<workerCountBits - 1

	// CAPACITY is the largest worker count the packed word can hold.
	CAPACITY = workerCountMask
)

// state is the packed (lifecycle, workerCount) word. Zero value is
// Running/0, the same word newState(Running, 0) stores; callers construct
// it through newState.
type state struct {
	word atomic.Uint64
}

func newState(phase Lifecycle, wc uint32) *state {
	s := &state{}
	s.word.Store(pack(phase, wc))
	return s
}

func pack(phase Lifecycle, wc uint32) uint64 {
	return uint64(phase)<<workerCountBits | uint64(wc&workerCountMask)
}

func unpack(word uint64) (Lifecycle, uint32) {
	return Lifecycle(word >> workerCountBits), uint32(word & workerCountMask)
}

// load returns the current (phase, workerCount).
func (s *state) load() (Lifecycle, uint32) {
	return unpack(s.word.Load())
}

// loadWord returns the raw packed word, for callers that need to pass it
// back into compareAndIncWorkerCount without an intervening load.
func (s *state) loadWord() uint64 {
	return s.word.Load()
}

// compareAndIncWorkerCount bumps the worker count by one iff the packed
// word still equals expected. On failure it returns the word it actually
// observed, so the caller can retry without a fresh load.
func (s *state) compareAndIncWorkerCount(expected uint64) (observed uint64, ok bool) {
	phase, wc := unpack(expected)
	next := pack(phase, wc+1)
	if s.word.CompareAndSwap(expected, next) {
		return next, true
	}
	return s.word.Load(), false
}

// decWorkerCount unconditionally decrements the worker count. Callers must
// guarantee a matching prior increment; it must never underflow.
func (s *state) decWorkerCount() (phase Lifecycle, wc uint32) {
	for {
		cur := s.word.Load()
		p, c := unpack(cur)
		if c == 0 {
			panic("pool: worker count underflow")
		}
		next := pack(p, c-1)
		if s.word.CompareAndSwap(cur, next) {
			return p, c - 1
		}
	}
}

// tryTransitionToShutdown moves Running -> Shutdown. Idempotent: returns
// true if the phase is already >= Shutdown.
func (s *state) tryTransitionToShutdown() bool {
	for {
		cur := s.word.Load()
		phase, wc := unpack(cur)
		if phase >= Shutdown {
			return true
		}
		next := pack(Shutdown, wc)
		if s.word.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// tryTransitionToStop moves phase <= Shutdown to Stop. Idempotent: returns
// true if the phase is already >= Stop.
func (s *state) tryTransitionToStop() bool {
	for {
		cur := s.word.Load()
		phase, wc := unpack(cur)
		if phase >= Stop {
			return true
		}
		next := pack(Stop, wc)
		if s.word.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// tryTransitionToTidying succeeds only if phase is Shutdown or Stop and the
// worker count is zero.
func (s *state) tryTransitionToTidying() bool {
	for {
		cur := s.word.Load()
		phase, wc := unpack(cur)
		if (phase != Shutdown && phase != Stop) || wc != 0 {
			return false
		}
		next := pack(Tidying, 0)
		if s.word.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// transitionToTerminated unconditionally sets the phase to Terminated. Only
// called from Tidying, by finalizeInstance.
func (s *state) transitionToTerminated() {
	for {
		cur := s.word.Load()
		_, wc := unpack(cur)
		next := pack(Terminated, wc)
		if s.word.CompareAndSwap(cur, next) {
			return
		}
	}
}
