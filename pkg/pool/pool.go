package pool

import (
	"unsafe"

	"github.com/ajitpratap0/reservoir/pkg/errors"
)

// Config configures a Pool at construction time. The zero value is usable:
// an unnamed, single-owner pool with no capacity hint that zero-initializes
// objects on reuse.
type Config[T any] struct {
	// Name identifies the pool in statistics exports and metrics labels.
	Name string

	// InitialCapacity reserves backing storage for the ownership ledger and
	// the free list. Purely a performance hint; the pool grows past it on
	// demand.
	InitialCapacity int

	// ThreadSafe selects the synchronization mode. When false the pool has
	// zero locking overhead and must be used by a single logical owner;
	// concurrent use without external serialization is undefined behavior.
	// The mode cannot be changed after construction.
	ThreadSafe bool

	// Construct initializes an object, both on fresh allocation and when a
	// recycled object is claimed. When reusing, Construct receives the
	// stale value after Destroy has run and must reinitialize every field
	// it cares about; it may deliberately retain backing capacity (slices,
	// maps) from the previous use. When nil, reused objects are reset to
	// the zero value of T.
	Construct func(*T)

	// Destroy is the destructor-equivalent for pooled objects. It runs when
	// a recycled object is about to be reinitialized, and for every tracked
	// object during Clear and Close. It never runs at Release time:
	// destruction is deferred until reuse or teardown.
	Destroy func(*T)
}

// Stats is a consistent snapshot of a pool's bookkeeping state.
type Stats struct {
	// Allocated is the number of objects the pool has ever constructed and
	// still owns.
	Allocated int
	// Free is the number of objects currently available for reuse.
	Free int
	// InUse is the number of objects currently on loan.
	InUse int
	// TotalAcquires counts every Acquire call since construction or the
	// last stats reset.
	TotalAcquires uint64
	// TotalReleases counts every successful Release call.
	TotalReleases uint64
	// ReuseCount counts acquires satisfied from the free list rather than
	// by fresh allocation.
	ReuseCount uint64
	// ReuseRate is ReuseCount / TotalAcquires, or 0 before the first
	// acquire. Always in [0, 1].
	ReuseRate float64
}

// Pool is a generic object-reuse pool. It owns the backing memory of every
// object it has ever constructed: the ledger records all of them, and the
// free list holds the subset currently available for reuse, most recently
// released first. Reuse is LIFO to favor cache-warm memory.
//
// A Pool must not be copied after first use.
type Pool[T any] struct {
	mu locker

	// Every object the pool has constructed, in-use or free. Doubles as
	// the membership oracle for the pooldebug release checks.
	allocated []*T
	// Objects ready for reuse, top of stack last.
	free []*T

	construct func(*T)
	destroy   func(*T)
	name      string

	// Guarded by mu, like the slices above.
	totalAcquires uint64
	totalReleases uint64
	reuseCount    uint64
}

// New creates a pool from the given configuration.
func New[T any](cfg Config[T]) *Pool[T] {
	p := &Pool[T]{
		mu:        newLocker(cfg.ThreadSafe),
		construct: cfg.Construct,
		destroy:   cfg.Destroy,
		name:      cfg.Name,
	}
	if cfg.InitialCapacity > 0 {
		p.allocated = make([]*T, 0, cfg.InitialCapacity)
		p.free = make([]*T, 0, cfg.InitialCapacity)
	}
	return p
}

// Name returns the pool's configured name.
func (p *Pool[T]) Name() string {
	return p.name
}

// Acquire returns an object from the pool, reusing a released one when
// available and allocating fresh memory otherwise. The returned reference
// is a loan: the caller has exclusive use of it until the matching Release,
// but the pool retains ownership of the memory.
//
// Acquire never fails. An allocation failure is an out-of-memory condition
// and terminates the program, consistent with a fail-fast policy.
func (p *Pool[T]) Acquire() *T {
	return p.AcquireInit(nil)
}

// AcquireInit is Acquire with a per-call initializer, the analogue of
// passing construction arguments. init runs after the configured Construct
// hook, on memory the calling goroutine has already exclusively claimed.
func (p *Pool[T]) AcquireInit(init func(*T)) *T {
	p.mu.Lock()
	p.totalAcquires++

	if n := len(p.free); n > 0 {
		obj := p.free[n-1]
		p.free = p.free[:n-1]
		p.reuseCount++
		p.mu.Unlock()

		// The pop above is the sole point of contention for this entry and
		// it happened under the lock, so no other goroutine can hold this
		// reference. Destroying and reinitializing outside the lock keeps
		// lock hold times to pure bookkeeping.
		if p.destroy != nil {
			p.destroy(obj)
		}
		if p.construct != nil {
			p.construct(obj)
		} else {
			var zero T
			*obj = zero
		}
		if init != nil {
			init(obj)
		}
		return obj
	}

	obj := new(T)
	p.allocated = append(p.allocated, obj)
	p.mu.Unlock()

	if p.construct != nil {
		p.construct(obj)
	}
	if init != nil {
		init(obj)
	}
	return obj
}

// Release returns a loaned object to the pool. The object is not destroyed;
// it stays in its last constructed state until the next acquire claims it
// or the pool is torn down. The caller must not touch the reference after
// a successful Release.
//
// Releasing nil fails with a validation error. In builds with the pooldebug
// tag, releasing an object the pool never allocated or releasing the same
// object twice is detected before any state is mutated and reported as a
// foreign-object or double-free error. Those scans are linear and compiled
// out of regular builds entirely.
func (p *Pool[T]) Release(obj *T) error {
	if obj == nil {
		return errors.New(errors.ErrorTypeValidation, "release of nil reference")
	}

	p.mu.Lock()
	if err := p.checkRelease(obj); err != nil {
		p.mu.Unlock()
		return err
	}
	p.free = append(p.free, obj)
	p.totalReleases++
	p.mu.Unlock()
	return nil
}

// AllocatedCount returns the number of objects the pool currently owns.
func (p *Pool[T]) AllocatedCount() int {
	p.mu.Lock()
	n := len(p.allocated)
	p.mu.Unlock()
	return n
}

// FreeCount returns the number of objects available for reuse.
func (p *Pool[T]) FreeCount() int {
	p.mu.Lock()
	n := len(p.free)
	p.mu.Unlock()
	return n
}

// InUseCount returns the number of objects currently on loan.
func (p *Pool[T]) InUseCount() int {
	p.mu.Lock()
	n := len(p.allocated) - len(p.free)
	p.mu.Unlock()
	return n
}

// ReuseRate returns the fraction of acquires satisfied by reuse, in [0, 1].
// It is 0 before the first acquire.
func (p *Pool[T]) ReuseRate() float64 {
	p.mu.Lock()
	rate := p.reuseRateLocked()
	p.mu.Unlock()
	return rate
}

func (p *Pool[T]) reuseRateLocked() float64 {
	if p.totalAcquires == 0 {
		return 0
	}
	return float64(p.reuseCount) / float64(p.totalAcquires)
}

// Stats returns a snapshot of all counters and counts taken under a single
// lock hold, so the values are mutually consistent.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	s := Stats{
		Allocated:     len(p.allocated),
		Free:          len(p.free),
		InUse:         len(p.allocated) - len(p.free),
		TotalAcquires: p.totalAcquires,
		TotalReleases: p.totalReleases,
		ReuseCount:    p.reuseCount,
		ReuseRate:     p.reuseRateLocked(),
	}
	p.mu.Unlock()
	return s
}

// ResetStats zeroes the acquire, release, and reuse counters. The ledger
// and free list are untouched. Useful for profiling specific sections.
func (p *Pool[T]) ResetStats() {
	p.mu.Lock()
	p.totalAcquires = 0
	p.totalReleases = 0
	p.reuseCount = 0
	p.mu.Unlock()
}

// Clear destroys every tracked object, in-use or free, releases all backing
// memory, and resets the statistics counters. The caller is responsible for
// ensuring no loaned reference is used after Clear; that precondition is
// not checked and violating it is undefined behavior.
func (p *Pool[T]) Clear() {
	p.mu.Lock()
	if p.destroy != nil {
		for _, obj := range p.allocated {
			p.destroy(obj)
		}
	}
	p.allocated = nil
	p.free = nil
	p.totalAcquires = 0
	p.totalReleases = 0
	p.reuseCount = 0
	p.mu.Unlock()
}

// Close tears the pool down, destroying every tracked object. Any reference
// still held by a caller becomes invalid. Meant for use with defer.
func (p *Pool[T]) Close() {
	p.Clear()
}

// Prewarm acquires count default-constructed objects and releases them all,
// forcing allocation up front so later demand is served from the free list.
// It is not an atomic batch: interleaved acquires and releases from other
// callers of a thread-safe pool are permitted and do not corrupt state.
func (p *Pool[T]) Prewarm(count int) {
	objs := make([]*T, 0, count)
	for i := 0; i < count; i++ {
		objs = append(objs, p.Acquire())
	}
	for _, obj := range objs {
		_ = p.Release(obj)
	}
}

// EstimateMemoryUse returns an estimate of the bytes the pool owns: the
// objects themselves plus one pointer-sized ledger entry per object and one
// per free-list entry. Memory reachable through pointer fields of T is not
// counted.
func (p *Pool[T]) EstimateMemoryUse() uint64 {
	var zero T
	objSize := uint64(unsafe.Sizeof(zero))
	ptrSize := uint64(unsafe.Sizeof(uintptr(0)))

	p.mu.Lock()
	allocated := uint64(len(p.allocated))
	free := uint64(len(p.free))
	p.mu.Unlock()

	return allocated*objSize + allocated*ptrSize + free*ptrSize
}
