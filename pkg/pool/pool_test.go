package pool

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSingleThreadFIFO is spec scenario 1: a single-thread pool executes
// jobs in submission order.
func TestSingleThreadFIFO(t *testing.T) {
	sub, p := SingleThread()
	defer p.ShutdownNow()

	out := make(chan string, 3)
	for _, label := range []string{"A", "B", "C"} {
		l := label
		require.NoError(t, sub.SendFunc(func() { out <- l }))
	}

	assert.Equal(t, "A", <-out)
	assert.Equal(t, "B", <-out)
	assert.Equal(t, "C", <-out)
}

// TestTwoThreadParallelism is spec scenario 2.
func TestTwoThreadParallelism(t *testing.T) {
	sub, p := FixedSize(2)
	defer p.ShutdownNow()

	out := make(chan string, 4)
	job := func() {
		out <- "x"
		time.Sleep(500 * time.Millisecond)
		out <- "y"
	}

	require.NoError(t, sub.SendFunc(job))
	require.NoError(t, sub.SendFunc(job))

	assert.Equal(t, "x", <-out)
	assert.Equal(t, "x", <-out)
	assert.Equal(t, "y", <-out)
	assert.Equal(t, "y", <-out)
}

// TestCloneSharesInner is spec scenario 3.
func TestCloneSharesInner(t *testing.T) {
	sub, p := SingleThread()
	defer p.ShutdownNow()

	clone := sub.Clone()

	out := make(chan string, 1)
	require.NoError(t, clone.SendFunc(func() { out <- "hey" }))

	assert.Equal(t, "hey", <-out)
	assert.Equal(t, sub.Size(), clone.Size())
}

// TestOrderlyShutdownDrains is spec scenario 4.
func TestOrderlyShutdownDrains(t *testing.T) {
	sub, p := SingleThread()

	var counter int64
	atomic.StoreInt64(&counter, 5)

	for i := 0; i < 10; i++ {
		require.NoError(t, sub.SendFunc(func() { atomic.AddInt64(&counter, 1) }))
	}

	sub.Shutdown()
	assert.True(t, sub.IsTerminating() || sub.IsTerminated())

	sub.AwaitTermination()

	assert.Equal(t, int64(15), atomic.LoadInt64(&counter))
	assert.True(t, sub.IsTerminated())
}

// TestForcefulShutdownDropsQueued is spec scenario 5.
func TestForcefulShutdownDropsQueued(t *testing.T) {
	sub, p := SingleThread()
	_ = p

	var counter int64

	for i := 0; i < 10; i++ {
		require.NoError(t, sub.SendFunc(func() {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&counter, 1)
		}))
	}

	sub.ShutdownNow()
	sub.AwaitTermination()

	assert.Less(t, atomic.LoadInt64(&counter), int64(10))
	assert.True(t, sub.IsTerminated())
}

// TestMountUnmountOrdering is spec scenario 6.
func TestMountUnmountOrdering(t *testing.T) {
	order := make(chan string, 3)

	sub, p := NewBuilder().
		Size(1).
		MaxSize(1).
		QueueCapacity(16).
		Mount(func() { order <- "mounted" }).
		Unmount(func() { order <- "unmounted" }).
		Build()

	require.NoError(t, sub.SendFunc(func() { order <- "hey" }))

	p.Shutdown()
	p.AwaitTermination()

	assert.Equal(t, "mounted", <-order)
	assert.Equal(t, "hey", <-order)
	assert.Equal(t, "unmounted", <-order)
}

// TestPanicIsolation is P6: a panic in Run() does not kill the pool or
// double-decrement the worker census.
func TestPanicIsolation(t *testing.T) {
	var recovered atomic.Value

	sub, p := NewBuilder().
		Size(1).
		MaxSize(1).
		QueueCapacity(16).
		OnPanic(func(job Job, r any) { recovered.Store(r) }).
		Build()
	defer p.ShutdownNow()

	require.NoError(t, sub.SendFunc(func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, sub.SendFunc(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool stopped processing jobs after a panic")
	}

	assert.Eventually(t, func() bool { return recovered.Load() != nil }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, sub.Size())
}

// TestOverflowFastPath: a full queue spawns an overflow worker carrying the
// offered job directly, up to max_size.
func TestOverflowFastPath(t *testing.T) {
	sub, p := NewBuilder().
		Size(1).
		MaxSize(3).
		QueueCapacity(1).
		Build()
	defer p.ShutdownNow()

	release := make(chan struct{})
	require.NoError(t, sub.SendFunc(func() { <-release })) // occupies the single core worker

	var accepted int
	for i := 0; i < 2; i++ {
		if err := sub.TrySend(JobFunc(func() {})); err == nil {
			accepted++
		}
	}
	close(release)

	assert.GreaterOrEqual(t, accepted, 1)
	assert.LessOrEqual(t, sub.Size(), 3)
}

// TestBuilderAssertsSizeAtLeastOne mirrors original_source/tests/lib.rs's
// assert! coverage for an invalid size.
func TestBuilderAssertsSizeAtLeastOne(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder().Size(0).Build()
	})
}

func TestBuilderAssertsSizeLEMaxSize(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder().Size(4).MaxSize(2).Build()
	})
}

// TestFuzzProducersRespectP4 races N producers against a mix of
// try/blocking/timeout sends and checks every accepted job ran exactly
// once (P4), aside from the explicitly-dropped shutdown_now case.
func TestFuzzProducersRespectP4(t *testing.T) {
	sub, p := FixedSize(4)
	defer p.ShutdownNow()

	const producers = 8
	const jobsPerProducer = 50

	var accepted int64
	var executed int64

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func(i int) {
			defer wg.Done()
			for j := 0; j < jobsPerProducer; j++ {
				job := JobFunc(func() { atomic.AddInt64(&executed, 1) })

				var err error
				switch (i + j) % 3 {
				case 0:
					err = sub.TrySend(job)
				case 1:
					err = sub.Send(job)
				default:
					err = sub.SendTimeout(job, 50*time.Millisecond)
				}
				if err == nil {
					atomic.AddInt64(&accepted, 1)
				}
			}
		}(i)
	}
	wg.Wait()

	sub.Shutdown()
	sub.AwaitTermination()

	assert.Equal(t, atomic.LoadInt64(&accepted), atomic.LoadInt64(&executed))
}

// TestShutdownRacesSend confirms every in-flight Send either succeeds or
// observes Disconnected -- never silently loses the job.
func TestShutdownRacesSend(t *testing.T) {
	sub, p := SingleThread()
	defer p.ShutdownNow()

	var wg sync.WaitGroup
	results := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results <- sub.Send(JobFunc(func() { time.Sleep(time.Millisecond) }))
	}()

	sub.Shutdown()
	wg.Wait()
	close(results)

	err := <-results
	if err != nil {
		_, ok := err.(*DisconnectedError)
		assert.True(t, ok, "expected nil or DisconnectedError, got %v", err)
	}
}

// TestAddWorkerRollsBackOnSpawnFailure exercises addWorker's spawn-failure
// rollback branch directly through the injectable spawn hook: real Go
// goroutines never fail to launch, so this is the only way to reach that
// branch. A failed spawn must not leave a phantom worker counted in the
// census, and must be reported back as Full.
func TestAddWorkerRollsBackOnSpawnFailure(t *testing.T) {
	_, p := NewBuilder().
		Size(1).
		MaxSize(1).
		QueueCapacity(16).
		withSpawn(func(f func()) error { return errors.New("boom") }).
		Build()
	defer p.ShutdownNow()

	err := p.inner.addWorker(nil)
	_, ok := err.(*FullError)
	assert.True(t, ok, "expected *FullError when the spawn hook fails, got %v", err)
	assert.Equal(t, 0, p.Size(), "worker count must roll back to 0 after a failed spawn")

	err = p.inner.addWorker(nil)
	_, ok = err.(*FullError)
	assert.True(t, ok, "a repeat attempt should fail the same way")
	assert.Equal(t, 0, p.Size(), "repeated failed spawns must never leave a phantom worker")
}

// TestPrestartCoreThreads confirms prestart spawns exactly Size core
// workers and then stops.
func TestPrestartCoreThreads(t *testing.T) {
	_, p := NewBuilder().Size(3).MaxSize(3).QueueCapacity(16).Build()
	defer p.ShutdownNow()

	p.PrestartCoreThreads()
	assert.Equal(t, 3, p.Size())
	assert.False(t, p.PrestartCoreThread())
}
