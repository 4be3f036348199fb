// Package pool implements a lazily-provisioned thread pool: a bounded job
// queue fronted by a fixed core of workers that can grow to an overflow
// cap when the queue is full, and shrink back down as overflow workers
// idle out. See SPEC_FULL.md at the repository root for the full design.
package pool
