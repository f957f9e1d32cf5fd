// Command reservoir runs synthetic workloads against Reservoir object pools
// and reports utilization, throughput, and memory behavior.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/reservoir/internal/bench"
	"github.com/ajitpratap0/reservoir/pkg/config"
	"github.com/ajitpratap0/reservoir/pkg/logger"
	"github.com/ajitpratap0/reservoir/pkg/metrics"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "reservoir",
		Short: "Reservoir - object-reuse pool benchmark harness",
		Long: `Reservoir is a generic object-reuse pool library. This tool drives its
pools with synthetic workloads to measure reuse rates, allocation behavior,
and throughput under configurable concurrency.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Reservoir v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var (
		configFile  string
		name        string
		workers     int
		iterations  int
		duration    time.Duration
		holdBatch   int
		rateLimit   int
		capacity    int
		prewarm     int
		payload     int
		logLevel    string
		jsonOutput  bool
		metricsAddr string
	)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic pool workload",
		Long: `Run a synthetic acquire/release workload against a thread-safe pool.
The workload can be described on the command line or in a YAML file.

Example:
  reservoir bench --workers 8 --iterations 100000 --prewarm 1024
  reservoir bench --config workload.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logger.Config{
				Level:    logLevel,
				Encoding: "console",
			}); err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg := config.DefaultBenchConfig()
			if configFile != "" {
				if err := config.Load(configFile, cfg); err != nil {
					return err
				}
			}
			applyFlagOverrides(cmd, cfg, name, workers, iterations, duration,
				holdBatch, rateLimit, capacity, prewarm, payload)

			return runBench(cmd.Context(), cfg, jsonOutput, metricsAddr)
		},
	}

	benchCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to workload YAML file (optional)")
	benchCmd.Flags().StringVar(&name, "name", "bench", "Workload name used in logs and metrics labels")
	benchCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of concurrent workers driving the pool")
	benchCmd.Flags().IntVar(&iterations, "iterations", 100000, "Acquire/release cycles per worker; ignored when --duration is set")
	benchCmd.Flags().DurationVar(&duration, "duration", 0, "Bound the run by wall-clock time instead of iterations (e.g. 10s)")
	benchCmd.Flags().IntVar(&holdBatch, "hold-batch", 1, "Objects each worker holds concurrently before releasing")
	benchCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "Cap iterations per second across all workers; 0 disables")
	benchCmd.Flags().IntVar(&capacity, "capacity", 1024, "Initial capacity hint for the pool under test")
	benchCmd.Flags().IntVar(&prewarm, "prewarm", 0, "Populate the free list with this many objects before the run")
	benchCmd.Flags().IntVar(&payload, "payload-bytes", 256, "Size of the synthetic pooled object")
	benchCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	benchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON instead of text")
	benchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run (e.g. :9090)")

	root.AddCommand(benchCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlagOverrides copies explicitly set flags over the loaded config so
// a YAML file and command-line tuning can be combined.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.BenchConfig,
	name string, workers, iterations int, duration time.Duration,
	holdBatch, rateLimit, capacity, prewarm, payload int) {
	if cmd.Flags().Changed("name") {
		cfg.Name = name
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Iterations = iterations
	}
	if cmd.Flags().Changed("duration") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("hold-batch") {
		cfg.HoldBatch = holdBatch
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.RateLimit = rateLimit
	}
	if cmd.Flags().Changed("capacity") {
		cfg.Pool.InitialCapacity = capacity
	}
	if cmd.Flags().Changed("prewarm") {
		cfg.Pool.Prewarm = prewarm
	}
	if cmd.Flags().Changed("payload-bytes") {
		cfg.Pool.PayloadBytes = payload
	}
}

func runBench(ctx context.Context, cfg *config.BenchConfig, jsonOutput bool, metricsAddr string) error {
	runner, err := bench.NewRunner(cfg, logger.Get())
	if err != nil {
		return err
	}
	defer runner.Close()

	collector := metrics.NewPoolCollector(runner.Pool())
	prometheus.MustRegister(collector)
	defer prometheus.Unregister(collector)

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := gojson.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printReport(report)
	return nil
}

func printReport(r *bench.Report) {
	fmt.Printf("Workload:      %s\n", r.Workload)
	fmt.Printf("Workers:       %d\n", r.Workers)
	fmt.Printf("Elapsed:       %s\n", r.Elapsed)
	fmt.Printf("Iterations:    %d (%.0f/s)\n", r.Iterations, r.Throughput)
	fmt.Println()
	fmt.Printf("Allocated:     %d objects\n", r.Pool.Allocated)
	fmt.Printf("Acquires:      %d\n", r.Pool.TotalAcquires)
	fmt.Printf("Releases:      %d\n", r.Pool.TotalReleases)
	fmt.Printf("Reuse rate:    %.2f%%\n", r.Pool.ReuseRate*100)
	fmt.Printf("Pool memory:   %d bytes (estimated)\n", r.MemoryEstimate)
	if r.RSSBefore > 0 && r.RSSAfter > 0 {
		fmt.Printf("Process RSS:   %d -> %d bytes\n", r.RSSBefore, r.RSSAfter)
	}
}
