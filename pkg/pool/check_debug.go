//go:build pooldebug

package pool

import "github.com/ajitpratap0/reservoir/pkg/errors"

// checkRelease enforces the loan contract in pooldebug builds. Both scans
// are linear in pool size, acceptable only outside production. The caller
// holds the lock; the checks run before the free-list push so a violation
// never corrupts the pool.
func (p *Pool[T]) checkRelease(obj *T) error {
	found := false
	for _, tracked := range p.allocated {
		if tracked == obj {
			found = true
			break
		}
	}
	if !found {
		return errors.New(errors.ErrorTypeForeignObject,
			"release of object not owned by this pool")
	}

	for _, freed := range p.free {
		if freed == obj {
			return errors.New(errors.ErrorTypeDoubleFree,
				"release of object already in the free list")
		}
	}
	return nil
}
