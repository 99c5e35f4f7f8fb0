package redis

import (
	"context"
	"fmt"
	"time"
)

const refreshLockKey = "paladin:refresh:lock"

// RefreshLock serializes advisory refreshes: only one refresh job may run at
// a time across all server instances. The TTL guards against a crashed
// worker holding the lock forever.
type RefreshLock struct {
	client *Client
	ttl    time.Duration
}

// NewRefreshLock creates a refresh lock with the given safety TTL.
func NewRefreshLock(client *Client, ttl time.Duration) *RefreshLock {
	return &RefreshLock{client: client, ttl: ttl}
}

// Acquire takes the lock for the given holder. Returns ErrLockHeld when
// another refresh is in flight.
func (l *RefreshLock) Acquire(ctx context.Context, holder string) error {
	ok, err := l.client.client.SetNX(ctx, refreshLockKey, holder, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

// Release drops the lock if this holder still owns it. Releasing a lock that
// expired or was taken over is a no-op.
func (l *RefreshLock) Release(ctx context.Context, holder string) error {
	const script = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0`
	if err := l.client.client.Eval(ctx, script, []string{refreshLockKey}, holder).Err(); err != nil {
		return fmt.Errorf("failed to release refresh lock: %w", err)
	}
	return nil
}
