package redis

import (
	"context"
	"sync"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/pkg/logger"
)

// IngestionLockName is the Redis key guarding ingestion runs
const IngestionLockName = "ingestion:lock"

// DistributedLock wraps redlock-go so only one replica ingests at a time
type DistributedLock struct {
	lockManager *redlock.RedLock
	lockName    string
	ttl         time.Duration

	mu     sync.Mutex
	locked bool
	stop   chan struct{}
}

// NewDistributedLock creates a named lock with the given TTL
func NewDistributedLock(lockManager *redlock.RedLock, name string, ttl time.Duration) *DistributedLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &DistributedLock{
		lockManager: lockManager,
		lockName:    name,
		ttl:         ttl,
	}
}

// TryAcquire attempts to take the lock using the Redlock algorithm.
// Returns false without error when another process holds it.
func (dl *DistributedLock) TryAcquire(ctx context.Context) (bool, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.locked {
		return false, nil
	}

	expiry, err := dl.lockManager.Lock(ctx, dl.lockName, dl.ttl)
	if err != nil || expiry <= 0 {
		logger.Debug("lock already held elsewhere",
			zap.String("lock_name", dl.lockName),
			zap.Error(err),
		)
		return false, nil
	}

	dl.locked = true
	dl.stop = make(chan struct{})

	logger.Debug("lock acquired",
		zap.String("lock_name", dl.lockName),
		zap.Duration("expiry", expiry),
	)

	go dl.renewLock(dl.stop)

	return true, nil
}

// Release releases the lock. Unlock failures are logged only: the lock may
// already have expired.
func (dl *DistributedLock) Release(ctx context.Context) error {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if !dl.locked {
		return nil
	}

	close(dl.stop)
	dl.locked = false

	if err := dl.lockManager.UnLock(ctx, dl.lockName); err != nil {
		logger.Warn("failed to release lock (may have already expired)",
			zap.String("lock_name", dl.lockName),
			zap.Error(err),
		)
	}

	return nil
}

// Held reports whether this process currently owns the lock
func (dl *DistributedLock) Held() bool {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	return dl.locked
}

// renewLock re-takes the lock at 2/3 of its TTL until released.
// redlock-go has no extend operation, so renewal is unlock + lock and another
// replica can take the lock between the two calls. A failed re-lock marks the
// lock as lost so Release does not touch a key someone else now owns.
func (dl *DistributedLock) renewLock(stop <-chan struct{}) {
	ticker := time.NewTicker(dl.ttl * 2 / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			dl.mu.Lock()
			if !dl.locked {
				dl.mu.Unlock()
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = dl.lockManager.UnLock(ctx, dl.lockName)
			expiry, err := dl.lockManager.Lock(ctx, dl.lockName, dl.ttl)
			cancel()

			if err != nil || expiry <= 0 {
				logger.Error("lock lost during renewal",
					zap.String("lock_name", dl.lockName),
					zap.Error(err),
				)
				dl.locked = false
				dl.mu.Unlock()
				return
			}
			dl.mu.Unlock()
		}
	}
}
