package pool

import "sync"

// locker abstracts the synchronization strategy chosen at pool construction.
// Thread-safe pools use a real mutex; single-owner pools use nopLocker so
// the compiler can inline the calls away and the bookkeeping path carries
// no synchronization cost.
type locker interface {
	Lock()
	Unlock()
}

// nopLocker is the no-op lock strategy for single-owner pools. Concurrent
// use of a pool built with nopLocker is undefined behavior.
type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// newLocker returns the lock implementation for the requested mode.
func newLocker(threadSafe bool) locker {
	if threadSafe {
		return &sync.Mutex{}
	}
	return nopLocker{}
}
