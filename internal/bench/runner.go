// Package bench implements the synthetic workload harness that exercises
// Reservoir pools under configurable concurrency and reports utilization.
package bench

import (
	"context"
	stderrors "errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ajitpratap0/reservoir/pkg/config"
	"github.com/ajitpratap0/reservoir/pkg/errors"
	"github.com/ajitpratap0/reservoir/pkg/metrics"
	"github.com/ajitpratap0/reservoir/pkg/pool"
)

// Payload is the synthetic pooled object. Data keeps its backing capacity
// across reuse cycles, the same retention pattern real pooled buffers use.
type Payload struct {
	Seq  uint64
	Data []byte
}

// Report summarizes a completed workload run.
type Report struct {
	Workload   string        `json:"workload"`
	Workers    int           `json:"workers"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Iterations uint64        `json:"iterations"`
	Throughput float64       `json:"iterations_per_second"`

	Pool           pool.Stats `json:"pool"`
	MemoryEstimate uint64     `json:"pool_memory_bytes"`

	RSSBefore uint64 `json:"rss_before_bytes"`
	RSSAfter  uint64 `json:"rss_after_bytes"`
}

// Runner drives a thread-safe pool with the configured number of workers.
type Runner struct {
	cfg    *config.BenchConfig
	logger *zap.Logger
	pool   *pool.Pool[Payload]
}

// NewRunner validates the configuration and builds the pool under test.
func NewRunner(cfg *config.BenchConfig, logger *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	payloadBytes := cfg.Pool.PayloadBytes
	p := pool.New(pool.Config[Payload]{
		Name:            cfg.Name,
		InitialCapacity: cfg.Pool.InitialCapacity,
		ThreadSafe:      true,
		Construct: func(obj *Payload) {
			obj.Seq = 0
			if cap(obj.Data) < payloadBytes {
				obj.Data = make([]byte, payloadBytes)
			} else {
				obj.Data = obj.Data[:payloadBytes]
			}
		},
	})

	return &Runner{
		cfg:    cfg,
		logger: logger.With(zap.String("workload", cfg.Name)),
		pool:   p,
	}, nil
}

// Pool exposes the pool under test, e.g. for metrics registration.
func (r *Runner) Pool() *pool.Pool[Payload] {
	return r.pool
}

// Run executes the workload and returns its report. The run is bounded by
// the configured duration when set, otherwise by per-worker iterations.
// Closing the pool is left to the caller so the report's pool snapshot can
// still be inspected.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	rssBefore := processRSS()

	if r.cfg.Pool.Prewarm > 0 {
		r.logger.Debug("prewarming pool", zap.Int("count", r.cfg.Pool.Prewarm))
		r.pool.Prewarm(r.cfg.Pool.Prewarm)
	}
	prewarmAcquires := uint64(r.cfg.Pool.Prewarm)

	runCtx := ctx
	var cancel context.CancelFunc
	if r.cfg.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	var limiter *rate.Limiter
	if r.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.RateLimit), r.cfg.RateLimit)
	}

	// Per-worker acquire tallies, summed after the run and checked against
	// the pool's own counter.
	workerAcquires := make([]uint64, r.cfg.Workers)
	var iterations uint64

	r.logger.Info("workload starting",
		zap.Int("workers", r.cfg.Workers),
		zap.Int("hold_batch", r.cfg.HoldBatch),
		zap.Duration("duration", r.cfg.Duration),
		zap.Int("iterations", r.cfg.Iterations))

	start := time.Now()

	g, gctx := errgroup.WithContext(runCtx)
	for w := 0; w < r.cfg.Workers; w++ {
		w := w
		g.Go(func() error {
			return r.work(gctx, w, limiter, &workerAcquires[w], &iterations)
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)

	if err != nil && !stderrors.Is(err, context.DeadlineExceeded) && !stderrors.Is(err, context.Canceled) {
		metrics.WorkloadErrors.WithLabelValues(r.cfg.Name).Inc()
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "workload failed")
	}

	total := atomic.LoadUint64(&iterations)
	stats := r.pool.Stats()

	// Every acquire in the run is attributable to a worker or the prewarm
	// pass. A mismatch means two workers claimed overlapping state, which
	// the pool's locked pop is supposed to make impossible.
	var workerTotal uint64
	for _, n := range workerAcquires {
		workerTotal += n
	}
	if workerTotal+prewarmAcquires != stats.TotalAcquires {
		return nil, errors.New(errors.ErrorTypeConcurrency, "acquire accounting mismatch").
			WithDetail("worker_total", workerTotal).
			WithDetail("prewarm", prewarmAcquires).
			WithDetail("pool_total", stats.TotalAcquires)
	}

	metrics.WorkloadIterations.WithLabelValues(r.cfg.Name).Add(float64(total))
	metrics.WorkloadDuration.WithLabelValues(r.cfg.Name).Observe(elapsed.Seconds())

	report := &Report{
		Workload:       r.cfg.Name,
		Workers:        r.cfg.Workers,
		Elapsed:        elapsed,
		Iterations:     total,
		Throughput:     float64(total) / elapsed.Seconds(),
		Pool:           stats,
		MemoryEstimate: r.pool.EstimateMemoryUse(),
		RSSBefore:      rssBefore,
		RSSAfter:       processRSS(),
	}

	r.logger.Info("workload finished",
		zap.Uint64("iterations", total),
		zap.Duration("elapsed", elapsed),
		zap.Float64("throughput", report.Throughput),
		zap.Float64("reuse_rate", stats.ReuseRate),
		zap.Int("allocated", stats.Allocated))

	return report, nil
}

// Close tears down the pool under test.
func (r *Runner) Close() {
	r.pool.Close()
}

// work is one worker's acquire/release loop. Each iteration loans HoldBatch
// objects at once before releasing them all, so the pool sees overlapping
// loans rather than strict acquire/release pairs.
func (r *Runner) work(ctx context.Context, id int, limiter *rate.Limiter, acquired *uint64, iterations *uint64) error {
	held := make([]*Payload, 0, r.cfg.HoldBatch)
	bounded := r.cfg.Duration <= 0

	for i := 0; ; i++ {
		if bounded && i >= r.cfg.Iterations {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		held = held[:0]
		for j := 0; j < r.cfg.HoldBatch; j++ {
			seq := *acquired + 1
			obj := r.pool.AcquireInit(func(obj *Payload) {
				obj.Seq = seq
			})
			*acquired++

			// Touch the payload so reuse actually exercises the memory.
			obj.Data[0] = byte(id)
			obj.Data[len(obj.Data)-1] = byte(seq)

			held = append(held, obj)
		}

		for _, obj := range held {
			if err := r.pool.Release(obj); err != nil {
				metrics.WorkloadErrors.WithLabelValues(r.cfg.Name).Inc()
				return err
			}
		}

		atomic.AddUint64(iterations, 1)
	}
}

// processRSS reads the current resident set size, best effort. Zero means
// the platform did not report it.
func processRSS() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return 0
	}
	return info.RSS
}
