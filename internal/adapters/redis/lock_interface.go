package redis

import "context"

// RunLock serializes work across processes.
// This allows swapping implementations (Redis, PostgreSQL, in-memory).
type RunLock interface {
	// TryAcquire returns true if the lock was acquired, false if already held elsewhere
	TryAcquire(ctx context.Context) (bool, error)

	// Release releases the lock
	Release(ctx context.Context) error
}

// NoopLock always succeeds. Used when Redis is disabled.
type NoopLock struct{}

func (NoopLock) TryAcquire(ctx context.Context) (bool, error) { return true, nil }

func (NoopLock) Release(ctx context.Context) error { return nil }
