package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/reservoir/pkg/config"
	"github.com/ajitpratap0/reservoir/pkg/errors"
	"github.com/ajitpratap0/reservoir/pkg/testutil"
)

func testConfig() *config.BenchConfig {
	return &config.BenchConfig{
		Name: "unit",
		Pool: config.PoolConfig{
			InitialCapacity: 64,
			PayloadBytes:    128,
		},
		Workers:    4,
		Iterations: 500,
		HoldBatch:  2,
	}
}

func TestRunnerIterationBound(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	r, err := NewRunner(testConfig(), testutil.TestLogger(t))
	require.NoError(t, err)
	defer r.Close()

	report, err := r.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint64(4*500), report.Iterations)
	assert.Equal(t, uint64(4*500*2), report.Pool.TotalAcquires)
	assert.Equal(t, report.Pool.TotalAcquires, report.Pool.TotalReleases)
	assert.Equal(t, 0, report.Pool.InUse)
	assert.Greater(t, report.Throughput, float64(0))
	assert.Greater(t, report.Pool.ReuseRate, 0.5,
		"steady churn against a warmed pool should mostly reuse")
}

func TestRunnerDurationBound(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	cfg := testConfig()
	cfg.Iterations = 0
	cfg.Duration = 200 * time.Millisecond

	r, err := NewRunner(cfg, testutil.TestLogger(t))
	require.NoError(t, err)
	defer r.Close()

	start := time.Now()
	report, err := r.Run(ctx)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.Greater(t, report.Iterations, uint64(0))
	assert.Equal(t, 0, report.Pool.InUse)
}

func TestRunnerPrewarmAccounted(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	cfg := testConfig()
	cfg.Pool.Prewarm = 32
	cfg.Workers = 2
	cfg.Iterations = 100

	r, err := NewRunner(cfg, testutil.TestLogger(t))
	require.NoError(t, err)
	defer r.Close()

	report, err := r.Run(ctx)
	require.NoError(t, err)

	// 32 prewarm acquires plus 2 workers x 100 iterations x 2 held objects.
	assert.Equal(t, uint64(32+2*100*2), report.Pool.TotalAcquires)
	assert.GreaterOrEqual(t, report.Pool.Allocated, 2)
}

func TestRunnerRateLimit(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	cfg := testConfig()
	cfg.Workers = 1
	cfg.Iterations = 20
	cfg.RateLimit = 100 // 100 iterations/sec, 20 iterations ~ 100ms past the initial burst

	r, err := NewRunner(cfg, testutil.TestLogger(t))
	require.NoError(t, err)
	defer r.Close()

	report, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), report.Iterations)
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 0

	_, err := NewRunner(cfg, testutil.TestLogger(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
