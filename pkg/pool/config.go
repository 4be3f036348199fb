// ============================================================================
// Beaver Pool - Config
// ============================================================================
//
// Package: pkg/pool
// File: config.go
// Function: The recognized pool options (spec §3.3), and their defaults.
//
// ============================================================================

package pool

import "time"

// PanicHandler is invoked whenever a job or a mount/unmount hook panics.
// When nil, the pool logs the panic itself instead of dropping it.
type PanicHandler func(job Job, recovered any)

// Config holds the recognized pool options. Build it through Builder rather
// than constructing it directly.
type Config struct {
	// Size is the target number of core workers. Core workers never
	// voluntarily idle-exit.
	Size uint32

	// MaxSize is the absolute worker cap; overflow workers (beyond Size)
	// may be created up to MaxSize when a submission finds the queue full.
	MaxSize uint32

	// QueueCapacity bounds the job queue depth.
	QueueCapacity int

	// Timeout, if nonzero, is the idle recv wait after which an overflow
	// worker may exit voluntarily. Core workers ignore it and block
	// indefinitely.
	Timeout time.Duration

	// StackSize is accepted for interface parity with the source design
	// but is advisory only: Go goroutines have no per-goroutine OS stack
	// size knob. See SPEC_FULL.md §3.
	StackSize int

	// Mount and Unmount, if set, are called at the start and end of every
	// worker's goroutine. A panic in either is recovered and swallowed.
	Mount   func()
	Unmount func()

	// OnPanic, if set, is called instead of the package logger whenever a
	// job or hook panics.
	OnPanic PanicHandler

	// spawn launches f in its own goroutine and reports whether the
	// launch succeeded. Overridable in tests to exercise add_worker's
	// rollback path; real Go goroutines never fail to start.
	spawn func(f func()) error
}

func defaultSpawn(f func()) error {
	go f()
	return nil
}
