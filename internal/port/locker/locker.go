package locker

import "context"

// AdvisoryLocker serialises critical sections across processes.
// WithLock holds the lock for the duration of fn and always releases it.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
