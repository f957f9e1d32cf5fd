package pool

import (
	"github.com/ajitpratap0/reservoir/pkg/errors"
	stringpool "github.com/ajitpratap0/reservoir/pkg/strings"
)

// Buffer is a pooled byte buffer. Data keeps its backing capacity across
// reuse cycles; only its length is reset when the buffer is reclaimed.
type Buffer struct {
	Data []byte

	// Index of the owning size bucket, set when the buffer is handed out.
	bucket int
}

// SlabPool manages byte buffers in power-of-two size buckets, each backed
// by its own Pool[Buffer]. It covers common buffer needs from 512B to 16MB;
// larger requests are allocated directly and returned to the allocator on
// Put rather than pooled.
type SlabPool struct {
	name  string
	pools []*Pool[Buffer]
	sizes []int
}

// NewSlabPool creates a slab pool with the standard bucket ladder:
// 512B, 1KB, 4KB, 16KB, 64KB, 256KB, 1MB, 4MB, 16MB.
func NewSlabPool(name string, threadSafe bool) *SlabPool {
	sizes := []int{
		512,
		1024,
		4096,
		16384,
		65536,
		262144,
		1048576,
		4194304,
		16777216,
	}

	pools := make([]*Pool[Buffer], len(sizes))
	for i, size := range sizes {
		size := size
		pools[i] = New(Config[Buffer]{
			Name:       stringpool.Sprintf("%s[%d]", name, size),
			ThreadSafe: threadSafe,
			// Reinitializes in place of zeroing so the backing array
			// survives reuse. That retention is the point of the slab.
			Construct: func(b *Buffer) {
				if cap(b.Data) < size {
					b.Data = make([]byte, 0, size)
				} else {
					b.Data = b.Data[:0]
				}
			},
		})
	}

	return &SlabPool{
		name:  name,
		pools: pools,
		sizes: sizes,
	}
}

// Name returns the slab pool's configured name.
func (s *SlabPool) Name() string {
	return s.name
}

// Get returns a buffer with length set to size, drawn from the smallest
// bucket that fits. Requests beyond the largest bucket get an unpooled
// buffer that Put will simply discard.
func (s *SlabPool) Get(size int) *Buffer {
	for i, bucketSize := range s.sizes {
		if bucketSize >= size {
			buf := s.pools[i].Acquire()
			buf.Data = buf.Data[:size]
			buf.bucket = i
			return buf
		}
	}

	return &Buffer{
		Data:   make([]byte, size),
		bucket: -1,
	}
}

// Put returns a buffer to its bucket. Oversized buffers that were allocated
// outside the bucket ladder are dropped for the garbage collector. The
// buffer's content is not cleared; its length is reset on the next Get.
func (s *SlabPool) Put(buf *Buffer) error {
	if buf == nil {
		return errors.New(errors.ErrorTypeValidation, "put of nil buffer")
	}
	if buf.bucket < 0 {
		return nil
	}
	return s.pools[buf.bucket].Release(buf)
}

// Stats aggregates the snapshot of every bucket.
func (s *SlabPool) Stats() Stats {
	var total Stats
	for _, p := range s.pools {
		ps := p.Stats()
		total.Allocated += ps.Allocated
		total.Free += ps.Free
		total.InUse += ps.InUse
		total.TotalAcquires += ps.TotalAcquires
		total.TotalReleases += ps.TotalReleases
		total.ReuseCount += ps.ReuseCount
	}
	if total.TotalAcquires > 0 {
		total.ReuseRate = float64(total.ReuseCount) / float64(total.TotalAcquires)
	}
	return total
}

// EstimateMemoryUse sums the bookkeeping estimate of every bucket plus the
// bucket-sized payload each allocated buffer carries. Pool[Buffer] counts
// only the Buffer headers, so the payload term is added here.
func (s *SlabPool) EstimateMemoryUse() uint64 {
	var total uint64
	for i, p := range s.pools {
		total += p.EstimateMemoryUse()
		total += uint64(p.AllocatedCount()) * uint64(s.sizes[i])
	}
	return total
}
