// Package locker serializes work on a single key, such as one employee's
// attendance for one calendar day.
package locker

import "context"

// Locker acquires an exclusive lock on key. The returned function releases it
// and is safe to call once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
