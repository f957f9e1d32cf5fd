package pool

import (
	"sync"
	"testing"
)

type benchPayload struct {
	id     int64
	matrix [16]float64
	tags   [4]string
}

func BenchmarkAcquireReleaseSingleOwner(b *testing.B) {
	p := New(Config[benchPayload]{InitialCapacity: 1})
	defer p.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		obj := p.Acquire()
		obj.id = int64(i)
		_ = p.Release(obj)
	}
}

func BenchmarkAcquireReleaseThreadSafe(b *testing.B) {
	p := New(Config[benchPayload]{InitialCapacity: 1, ThreadSafe: true})
	defer p.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		obj := p.Acquire()
		obj.id = int64(i)
		_ = p.Release(obj)
	}
}

func BenchmarkAcquireReleaseParallel(b *testing.B) {
	p := New(Config[benchPayload]{InitialCapacity: 64, ThreadSafe: true})
	defer p.Close()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			obj := p.Acquire()
			obj.id = 1
			_ = p.Release(obj)
		}
	})
}

// Baseline: the same churn against sync.Pool, which has no ownership ledger
// or statistics. Useful for judging the bookkeeping overhead.
func BenchmarkSyncPoolBaseline(b *testing.B) {
	sp := sync.Pool{New: func() interface{} { return new(benchPayload) }}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		obj := sp.Get().(*benchPayload)
		obj.id = int64(i)
		sp.Put(obj)
	}
}

// Baseline: fresh allocation per iteration, the cost the pool amortizes.
func BenchmarkFreshAllocationBaseline(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		obj := new(benchPayload)
		obj.id = int64(i)
		_ = obj
	}
}

func BenchmarkSlabPoolGetPut(b *testing.B) {
	s := NewSlabPool("bench", true)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf := s.Get(4096)
		buf.Data[0] = byte(i)
		_ = s.Put(buf)
	}
}
