// Package pool provides a generic, optionally thread-safe object-reuse pool
// with explicit ownership tracking. Unlike sync.Pool, which may drop pooled
// objects at any GC cycle and keeps no record of what it handed out, Pool
// owns every instance it has ever constructed: acquired objects are loaned
// to the caller and recycled on release, never destroyed until the next
// reuse or pool teardown.
//
// The pool is built for value types whose construction dominates their
// destruction cost. Releasing an object performs no cleanup at all; the
// stale-but-constructed value is only destroyed and reinitialized when the
// next acquire claims it. This deferred-destruction contract is the central
// design decision of the package and must be kept in mind when pooled types
// hold external resources.
//
// The package provides:
//   - Pool[T], a generic ledger-tracked reuse pool with LIFO recycling
//   - Selectable thread-safety at construction time with zero
//     synchronization overhead in single-owner mode
//   - Utilization statistics (acquires, releases, reuse rate, memory use)
//   - Loan-contract enforcement (foreign-object and double-free detection)
//     in builds with the "pooldebug" tag, compiled out everywhere else
//   - SlabPool, size-bucketed byte buffer pooling built on Pool
//
// Example usage:
//
//	p := pool.New(pool.Config[bytes.Buffer]{
//	    Name:            "scratch",
//	    InitialCapacity: 128,
//	    ThreadSafe:      true,
//	})
//	defer p.Close()
//
//	buf := p.Acquire()
//	// ... use buf ...
//	if err := p.Release(buf); err != nil {
//	    // nil reference, or a loan-contract violation in pooldebug builds
//	}
//
// Callers must release every acquired object on every exit path and must
// not touch a reference after releasing it. Outside pooldebug builds these
// rules are not checked; violating them is undefined behavior.
package pool
