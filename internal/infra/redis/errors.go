package redis

import "errors"

// ErrLockHeld is returned when the refresh lock is already taken.
var ErrLockHeld = errors.New("redis: lock already held")
