package alertstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisSweepLocker lets one instance at a time run a periodic job.
type RedisSweepLocker struct {
	locker *redislock.Client
	ttl    time.Duration
}

// NewRedisSweepLocker creates a locker. ttl bounds how long a crashed holder blocks others.
func NewRedisSweepLocker(client *redis.Client, ttl time.Duration) *RedisSweepLocker {
	return &RedisSweepLocker{locker: redislock.New(client), ttl: ttl}
}

var _ portssvc.SweepLocker = (*RedisSweepLocker)(nil)

func (l *RedisSweepLocker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	lock, err := l.locker.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	release := func() {
		// The job's context may already be canceled at shutdown.
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			middleware.GetLoggerFromCtx(ctx).Warn("Failed to release lock", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return release, true, nil
}
