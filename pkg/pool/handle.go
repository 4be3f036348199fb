// ============================================================================
// Beaver Pool - Submitter / Pool handles
// ============================================================================
//
// Package: pkg/pool
// File: handle.go
// Function: The public API surface (spec §4.5, §6): Submitter for job
//           submission, Pool for lifecycle control and introspection. Both
//           are thin handles sharing one *inner, mirroring the Rust
//           original's Sender<T>/ThreadPool<T> split (original_source's
//           core.rs) so that cloning a handle demonstrably shares state
//           (spec scenario 3).
//
// ============================================================================

package pool

import "time"

// Pool is the administrative handle: shutdown, termination, introspection.
type Pool struct {
	inner *inner
}

// Submitter is the job-submission handle. Submitter values are cheap to
// copy and Clone(); every clone shares the same underlying pool.
type Submitter struct {
	inner *inner
}

// Clone returns a new Submitter sharing this pool's Inner.
func (s Submitter) Clone() Submitter {
	return Submitter{inner: s.inner}
}

// TrySend performs a non-blocking submission (spec §4.5 try_send).
func (s Submitter) TrySend(job Job) error {
	if err := s.inner.queue.TrySend(job); err != nil {
		if full, ok := err.(*FullError); ok {
			if addErr := s.inner.addWorker(full.Job); addErr == nil {
				return nil
			}
			return err
		}
		return err
	}

	if _, wc := s.inner.state.load(); wc < s.inner.config.Size {
		_ = s.inner.addWorker(nil)
	}
	return nil
}

// Send blocks until the job is queued or the pool is disconnected.
func (s Submitter) Send(job Job) error {
	err := s.TrySend(job)
	if _, ok := err.(*FullError); ok {
		return s.inner.queue.Send(job)
	}
	return err
}

// SendTimeout blocks up to d.
func (s Submitter) SendTimeout(job Job, d time.Duration) error {
	err := s.TrySend(job)
	if _, ok := err.(*FullError); ok {
		return s.inner.queue.SendTimeout(job, d)
	}
	return err
}

// TrySendFunc, SendFunc and SendTimeoutFunc wrap a bare func() as a Job,
// the "convenience overload" required by spec §6.
func (s Submitter) TrySendFunc(f func()) error { return s.TrySend(JobFunc(f)) }
func (s Submitter) SendFunc(f func()) error    { return s.Send(JobFunc(f)) }
func (s Submitter) SendTimeoutFunc(f func(), d time.Duration) error {
	return s.SendTimeout(JobFunc(f), d)
}

// Shutdown closes the queue to new sends and transitions Running ->
// Shutdown; queued jobs are still drained by workers. Non-blocking.
func (s Submitter) Shutdown() { s.inner.shutdown() }

// ShutdownNow closes the queue, transitions to Stop, and discards whatever
// is still buffered so blocked producers and workers observe disconnection
// promptly. Running jobs are not interrupted.
func (s Submitter) ShutdownNow() { s.inner.shutdownNow() }

// AwaitTermination blocks until the pool reaches Terminated.
func (s Submitter) AwaitTermination() { s.inner.awaitTermination() }

// IsTerminating reports whether the queue is closed but teardown hasn't
// finished yet.
func (s Submitter) IsTerminating() bool { return s.inner.isTerminating() }

// IsTerminated reports whether the pool has fully torn down.
func (s Submitter) IsTerminated() bool { return s.inner.isTerminated() }

// Size returns the current live worker count.
func (s Submitter) Size() int { return s.inner.size() }

// Queued returns the current queue depth.
func (s Submitter) Queued() int { return s.inner.queue.Len() }

// Pool method set mirrors Submitter's lifecycle/introspection operations,
// for callers that hold a Pool (e.g. received from Builder.Build rather
// than threading a Submitter through) without needing to submit jobs.

func (p *Pool) Shutdown()                   { p.inner.shutdown() }
func (p *Pool) ShutdownNow()                { p.inner.shutdownNow() }
func (p *Pool) AwaitTermination()           { p.inner.awaitTermination() }
func (p *Pool) IsTerminating() bool         { return p.inner.isTerminating() }
func (p *Pool) IsTerminated() bool          { return p.inner.isTerminated() }
func (p *Pool) Size() int                   { return p.inner.size() }
func (p *Pool) Queued() int                 { return p.inner.queue.Len() }

// PrestartCoreThread spawns one core worker if below target; reports
// whether it did.
func (p *Pool) PrestartCoreThread() bool {
	if _, wc := p.inner.state.load(); wc < p.inner.config.Size {
		return p.inner.addWorker(nil) == nil
	}
	return false
}

// PrestartCoreThreads repeatedly spawns core workers until the target is
// reached.
func (p *Pool) PrestartCoreThreads() {
	for p.PrestartCoreThread() {
	}
}

func (in *inner) shutdown() {
	in.queue.Close()
	in.state.tryTransitionToShutdown()
	// No worker may be left to finalize (none was ever spawned, or the
	// last one exited before the transition above); finalize here too.
	in.finalizeInstance()
}

func (in *inner) shutdownNow() {
	in.queue.Close()
	if in.state.tryTransitionToStop() {
		in.queue.Drain()
	}
	in.finalizeInstance()
}

func (in *inner) awaitTermination() {
	in.terminationMu.Lock()
	defer in.terminationMu.Unlock()
	for {
		if phase, _ := in.state.load(); phase == Terminated {
			return
		}
		in.terminationCond.Wait()
	}
}

func (in *inner) isTerminating() bool {
	return !in.queue.IsOpen() && !in.isTerminated()
}

func (in *inner) isTerminated() bool {
	phase, _ := in.state.load()
	return phase == Terminated
}

func (in *inner) size() int {
	_, wc := in.state.load()
	return int(wc)
}
