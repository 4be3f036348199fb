// ============================================================================
// Beaver Pool - Builder
// ============================================================================
//
// Package: pkg/pool
// File: builder.go
// Function: Fluent construction of a pool from a validated Config (spec
//           §4.6), plus the FixedSize/SingleThread factory shortcuts (spec
//           §6). Grounded on original_source/src/core.rs's TPBuilder and
//           ThreadPool::fixed_size/single_thread.
//
// ============================================================================

package pool

import (
	"runtime"
	"time"
)

const defaultQueueCapacity = 64 * 1024

// Builder constructs a Config fluently and turns it into a running pool.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder defaulted to size = NumCPU, max_size =
// size, queue_capacity = 64Ki, no timeout, no hooks.
func NewBuilder() *Builder {
	n := uint32(runtime.NumCPU())
	return &Builder{cfg: Config{
		Size:          n,
		MaxSize:       n,
		QueueCapacity: defaultQueueCapacity,
	}}
}

func (b *Builder) Size(n uint32) *Builder          { b.cfg.Size = n; return b }
func (b *Builder) MaxSize(n uint32) *Builder        { b.cfg.MaxSize = n; return b }
func (b *Builder) QueueCapacity(n int) *Builder     { b.cfg.QueueCapacity = n; return b }
func (b *Builder) Timeout(d time.Duration) *Builder { b.cfg.Timeout = d; return b }
func (b *Builder) StackSize(n int) *Builder         { b.cfg.StackSize = n; return b }
func (b *Builder) Mount(f func()) *Builder          { b.cfg.Mount = f; return b }
func (b *Builder) Unmount(f func()) *Builder        { b.cfg.Unmount = f; return b }
func (b *Builder) OnPanic(h PanicHandler) *Builder  { b.cfg.OnPanic = h; return b }

// withSpawn overrides the goroutine-launch hook; test-only.
func (b *Builder) withSpawn(f func(func()) error) *Builder { b.cfg.spawn = f; return b }

// Build asserts the config is well-formed and returns a fresh Submitter and
// Pool sharing one Inner. Assertion failures are programmer errors: this
// panics rather than returning an error, exactly as the Rust original's
// TPBuilder::build asserts.
func (b *Builder) Build() (Submitter, *Pool) {
	if b.cfg.Size < 1 {
		panic("pool: at least one worker required (size >= 1)")
	}
	if b.cfg.Size > b.cfg.MaxSize {
		panic("pool: size cannot be greater than max_size")
	}
	if b.cfg.QueueCapacity <= 0 {
		panic("pool: queue_capacity must be positive")
	}
	if b.cfg.StackSize < 0 {
		panic("pool: stack_size must not be negative")
	}

	in := newInner(b.cfg)
	return Submitter{inner: in}, &Pool{inner: in}
}

// FixedSize builds a pool of exactly n core workers with an effectively
// unbounded queue.
func FixedSize(n uint32) (Submitter, *Pool) {
	return NewBuilder().Size(n).MaxSize(n).QueueCapacity(defaultQueueCapacity).Build()
}

// SingleThread builds a pool backed by exactly one worker.
func SingleThread() (Submitter, *Pool) {
	return NewBuilder().Size(1).MaxSize(1).QueueCapacity(defaultQueueCapacity).Build()
}
