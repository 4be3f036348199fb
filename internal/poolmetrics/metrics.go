// ============================================================================
// Beaver Pool - Prometheus Metrics
// ============================================================================
//
// Package: internal/poolmetrics
// File: metrics.go
// Purpose: Expose pool observables for Prometheus scraping, adapted from
//          the teacher's internal/metrics.Collector (construct-time
//          MustRegister, StartServer(port)).
//
// Metrics:
//   pool_size            - gauge, live worker count (pool.Size())
//   pool_queued          - gauge, live queue depth (pool.Queued())
//   pool_jobs_run_total  - counter, jobs that completed Run() without panic
//   pool_jobs_panicked_total - counter, jobs whose Run() panicked
//
// ============================================================================

package poolmetrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Observable is the subset of *pool.Pool the collector needs; kept as an
// interface so tests can fake it without building a real pool.
type Observable interface {
	Size() int
	Queued() int
}

// Collector exposes a pool's live state and job-level counters to
// Prometheus.
type Collector struct {
	size   prometheus.GaugeFunc
	queued prometheus.GaugeFunc

	jobsRun      prometheus.Counter
	jobsPanicked prometheus.Counter
}

// NewCollector builds and registers a Collector sampling pool.
func NewCollector(pool Observable) *Collector {
	c := &Collector{
		size: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pool_size",
			Help: "Current number of live workers",
		}, func() float64 { return float64(pool.Size()) }),

		queued: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pool_queued",
			Help: "Current number of jobs buffered in the queue",
		}, func() float64 { return float64(pool.Queued()) }),

		jobsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pool_jobs_run_total",
			Help: "Total number of jobs that completed without panicking",
		}),

		jobsPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pool_jobs_panicked_total",
			Help: "Total number of jobs whose Run() panicked",
		}),
	}

	prometheus.MustRegister(c.size)
	prometheus.MustRegister(c.queued)
	prometheus.MustRegister(c.jobsRun)
	prometheus.MustRegister(c.jobsPanicked)

	return c
}

// RecordRun records a job that completed without panicking.
func (c *Collector) RecordRun() { c.jobsRun.Inc() }

// RecordPanic records a job whose Run() panicked.
func (c *Collector) RecordPanic() { c.jobsPanicked.Inc() }

// StartServer starts the Prometheus HTTP endpoint. Blocks until the server
// exits or errors.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
