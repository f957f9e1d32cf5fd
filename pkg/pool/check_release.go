//go:build !pooldebug

package pool

// checkRelease is a no-op outside pooldebug builds. Violating the loan
// contract in production is undefined behavior, not a reported error; the
// scans are compiled out to keep Release at pure O(1) bookkeeping.
func (p *Pool[T]) checkRelease(*T) error {
	return nil
}
