// ============================================================================
// Beaver Pool CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cliapp
// File: cliapp.go
// Purpose: Provides user-friendly command line interface based on Cobra
//          framework, adapted from the teacher's internal/cli.BuildCLI.
//
// Command Structure:
//   poolctl                         # Root command
//   ├── run                         # Build a pool from config and idle
//   │   └── --config, -c          # Specify config file
//   ├── submit                      # Submit jobs from a JSON file
//   │   └── --file, -f            # Specify job JSON file
//   ├── bench                       # Generate synthetic load
//   │   └── --jobs, --rate        # Job count / submission rate
//   ├── status                      # View pool status
//   ├── --version                   # Display version information
//   └── --help                      # Display help information
//
// run Command:
//   Builds a pool from config, starts the metrics server (if enabled),
//   listens for SIGINT/SIGTERM, and shuts the pool down gracefully:
//   1. Load config file
//   2. Build pool via pkg/pool.Builder
//   3. Start Prometheus metrics server (if enabled)
//   4. Wait for a shutdown signal
//   5. Shutdown + AwaitTermination
//
// submit Command:
//   Reads job descriptors from a JSON file and submits them against a
//   pool built from config:
//   [
//     {"id": "job-1", "sleep_ms": 10}
//   ]
//   Missing ids are filled in with a generated UUID.
//
// bench Command:
//   Submits --jobs synthetic jobs at a rate capped by --rate per second,
//   then reports how many were accepted/rejected and final queue depth.
//
// status Command:
//   Prints size/queued/is_terminating/is_terminated for the CLI-local
//   pool instance (meaningful within a single process, same as the
//   teacher's globalCtrl-backed status command).
//
// ============================================================================

package cliapp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ChuLiYu/beaver-pool/internal/config"
	"github.com/ChuLiYu/beaver-pool/internal/poolmetrics"
	"github.com/ChuLiYu/beaver-pool/pkg/pool"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	configFile string
	globalPool *pool.Pool
	globalSub  pool.Submitter
	log        = logrus.New()

	metricsOnce      sync.Once
	metricsCollector *poolmetrics.Collector
)

// cliObservable samples whichever pool the CLI currently has live in
// globalPool, the same singleton the status command already reports
// against.
type cliObservable struct{}

func (cliObservable) Size() int {
	if globalPool == nil {
		return 0
	}
	return globalPool.Size()
}

func (cliObservable) Queued() int {
	if globalPool == nil {
		return 0
	}
	return globalPool.Queued()
}

// collector returns the process-wide metrics collector, creating it on
// first use. One collector per process, registered once, matching
// poolmetrics.Collector's construct-time MustRegister contract.
func collector() *poolmetrics.Collector {
	metricsOnce.Do(func() {
		metricsCollector = poolmetrics.NewCollector(cliObservable{})
	})
	return metricsCollector
}

// instrument wraps job so a completion that returns normally increments
// the collector's run counter. A panic is left to propagate so the
// pool's own panic boundary still recovers it exactly once and routes
// it through OnPanic -> collector.RecordPanic.
func instrument(job pool.Job) pool.Job {
	c := collector()
	return pool.JobFunc(func() {
		ok := false
		defer func() {
			if r := recover(); r != nil {
				panic(r)
			}
			if ok {
				c.RecordRun()
			}
		}()
		job.Run()
		ok = true
	})
}

// BuildCLI assembles the poolctl command tree.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "poolctl",
		Short: "poolctl: drive a lazily-provisioned thread pool",
		Long: `poolctl builds and drives a beaver-pool thread pool:
- lazy core/overflow worker provisioning
- bounded job queue with try/blocking/timeout submission
- Prometheus metrics
- graceful shutdown on SIGINT/SIGTERM`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildSubmitCommand())
	rootCmd.AddCommand(buildBenchCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

func buildRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a pool and keep it alive until signaled",
		Long:  "Build a pool from config, optionally serve metrics, and block until SIGINT/SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPool(configFile)
		},
	}
	return cmd
}

func runPool(path string) error {
	cfg, err := loadOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sub, p := buildPoolFromConfig(cfg)
	globalSub, globalPool = sub, p

	log.Infof("pool started: size=%d max_size=%d queue_capacity=%d", cfg.Pool.Size, cfg.Pool.MaxSize, cfg.Pool.QueueCapacity)

	if cfg.Metrics.Enabled {
		go func() {
			log.Infof("starting metrics server on :%d", cfg.Metrics.Port)
			if err := poolmetrics.StartServer(cfg.Metrics.Port); err != nil {
				log.WithError(err).Warn("metrics server exited")
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("received shutdown signal, draining and terminating")
	sub.Shutdown()
	sub.AwaitTermination()
	log.Info("pool terminated")
	return nil
}

func buildSubmitCommand() *cobra.Command {
	var jobFile string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit jobs from a JSON file",
		Long:  "Read job descriptors from a JSON file and submit them to a pool built from config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobFile == "" {
				return fmt.Errorf("job file is required (use --file or -f)")
			}
			return submitJobs(jobFile)
		},
	}

	cmd.Flags().StringVarP(&jobFile, "file", "f", "", "JSON file containing job descriptors")
	cmd.MarkFlagRequired("file")

	return cmd
}

type jobDescriptor struct {
	ID      string `json:"id"`
	SleepMs int64  `json:"sleep_ms"`
}

func submitJobs(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read job file: %w", err)
	}

	var descriptors []jobDescriptor
	if err := json.Unmarshal(data, &descriptors); err != nil {
		return fmt.Errorf("failed to parse job file: %w", err)
	}

	cfg, err := loadOrDefault(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sub, p := buildPoolFromConfig(cfg)
	globalSub, globalPool = sub, p

	accepted, rejected := 0, 0
	for _, d := range descriptors {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		sleep := time.Duration(d.SleepMs) * time.Millisecond
		jobID := id

		job := instrument(pool.JobFunc(func() {
			if sleep > 0 {
				time.Sleep(sleep)
			}
			log.Debugf("job %s completed", jobID)
		}))
		err := sub.TrySend(job)
		if err != nil {
			rejected++
			log.WithError(err).Warnf("job %s rejected", jobID)
			continue
		}
		accepted++
	}

	log.Infof("submitted %d/%d jobs (%d rejected)", accepted, len(descriptors), rejected)
	return nil
}

func buildBenchCommand() *cobra.Command {
	var jobs int
	var jobsPerSec float64

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Generate synthetic load against a fresh pool",
		Long:  "Submit --jobs synthetic jobs at a rate capped by --rate per second",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(jobs, jobsPerSec)
		},
	}

	cmd.Flags().IntVar(&jobs, "jobs", 1000, "number of synthetic jobs to submit")
	cmd.Flags().Float64Var(&jobsPerSec, "rate", 500, "maximum job submissions per second")

	return cmd
}

func runBench(jobCount int, jobsPerSec float64) error {
	cfg, err := loadOrDefault(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sub, p := buildPoolFromConfig(cfg)
	globalSub, globalPool = sub, p

	limiter := rate.NewLimiter(rate.Limit(jobsPerSec), int(jobsPerSec))
	ctx := context.Background()

	start := time.Now()
	accepted, rejected := 0, 0

	for i := 0; i < jobCount; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
		if err := sub.TrySend(instrument(pool.JobFunc(func() {}))); err != nil {
			rejected++
			continue
		}
		accepted++
	}

	sub.Shutdown()
	sub.AwaitTermination()
	elapsed := time.Since(start)

	log.Infof("bench: submitted %d jobs (%d accepted, %d rejected) in %s (%.1f jobs/sec)",
		jobCount, accepted, rejected, elapsed, float64(accepted)/elapsed.Seconds())
	log.Infof("bench: final queue depth=%d", p.Queued())
	return nil
}

func buildStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pool status",
		Long:  "Display size, queue depth, and lifecycle state for the CLI-local pool instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus()
		},
	}
	return cmd
}

func showStatus() error {
	fmt.Println("poolctl status")
	fmt.Printf("  config file:    %s\n", configFile)

	if globalPool == nil {
		fmt.Println("  pool:           not running (use 'poolctl run', 'submit', or 'bench' first)")
		return nil
	}

	fmt.Printf("  size:           %d\n", globalPool.Size())
	fmt.Printf("  queued:         %d\n", globalPool.Queued())
	fmt.Printf("  is_terminating: %t\n", globalPool.IsTerminating())
	fmt.Printf("  is_terminated:  %t\n", globalPool.IsTerminated())
	return nil
}

func loadOrDefault(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildPoolFromConfig(cfg *config.Config) (pool.Submitter, *pool.Pool) {
	b := pool.NewBuilder().
		Size(cfg.Pool.Size).
		MaxSize(cfg.Pool.MaxSize).
		QueueCapacity(cfg.Pool.QueueCapacity)

	if cfg.Pool.Timeout > 0 {
		b = b.Timeout(cfg.Pool.Timeout)
	}
	if cfg.Pool.StackSize > 0 {
		b = b.StackSize(cfg.Pool.StackSize)
	}
	b = b.OnPanic(func(job pool.Job, recovered any) {
		log.Errorf("job panicked: %v", recovered)
		collector().RecordPanic()
	})

	return b.Build()
}
