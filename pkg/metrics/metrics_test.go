package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/reservoir/pkg/pool"
)

func TestPoolCollectorExportsAllSeries(t *testing.T) {
	p := pool.New(pool.Config[[64]byte]{Name: "widgets"})
	defer p.Close()

	obj := p.Acquire()
	require.NoError(t, p.Release(obj))
	p.Acquire()

	c := NewPoolCollector(p)

	// 8 series per registered pool.
	assert.Equal(t, 8, testutil.CollectAndCount(c))

	expected := `
		# HELP reservoir_pool_allocated Objects the pool has constructed and still owns
		# TYPE reservoir_pool_allocated gauge
		reservoir_pool_allocated{pool="widgets"} 1
		# HELP reservoir_pool_in_use Objects currently on loan
		# TYPE reservoir_pool_in_use gauge
		reservoir_pool_in_use{pool="widgets"} 1
		# HELP reservoir_pool_acquires_total Total acquire operations
		# TYPE reservoir_pool_acquires_total counter
		reservoir_pool_acquires_total{pool="widgets"} 2
		# HELP reservoir_pool_reuse_rate Fraction of acquires satisfied by reuse, in [0,1]
		# TYPE reservoir_pool_reuse_rate gauge
		reservoir_pool_reuse_rate{pool="widgets"} 0.5
	`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"reservoir_pool_allocated",
		"reservoir_pool_in_use",
		"reservoir_pool_acquires_total",
		"reservoir_pool_reuse_rate",
	))
}

func TestPoolCollectorRegisterLater(t *testing.T) {
	c := NewPoolCollector()
	assert.Equal(t, 0, testutil.CollectAndCount(c))

	p := pool.New(pool.Config[int]{Name: "late"})
	defer p.Close()
	c.Register(p)

	assert.Equal(t, 8, testutil.CollectAndCount(c))
}

func TestPoolCollectorSlabPoolSource(t *testing.T) {
	s := pool.NewSlabPool("slabs", true)
	buf := s.Get(512)
	require.NoError(t, s.Put(buf))

	c := NewPoolCollector(s)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
