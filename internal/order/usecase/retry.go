package usecase

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	dtoerrors "sobgamecoin/internal/errors"
	"sobgamecoin/internal/infrastructure/mysql"
	"sobgamecoin/internal/infrastructure/postgres"
)

// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms), then 200ms.
var backoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

// withRetry runs fn until it succeeds, fails with a non-transient error or
// runs out of attempts. Only store deadlocks and lock wait timeouts are
// retried; every attempt starts from a fresh read inside fn.
func withRetry[T any](ctx context.Context, logger *zap.Logger, maxAttempts int, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		if !isDeadlockError(err) {
			return zero, err
		}
		if attempt == maxAttempts {
			break
		}

		logger.Warn("deadlock detected, retrying", zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		if err := sleep(ctx, backoff(attempt)); err != nil {
			return zero, err
		}
	}

	return zero, dtoerrors.NewDeadlockError("max retries exceeded")
}

// backoff returns the wait before the attempt following attempt, with ±20% jitter.
func backoff(attempt int) time.Duration {
	base := backoffs[len(backoffs)-1]
	if attempt < len(backoffs) {
		base = backoffs[attempt]
	}
	if base == 0 {
		return 0
	}
	factor := 0.8 + rand.Float64()*0.4
	return time.Duration(float64(base) * factor)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isDeadlockError(err error) bool {
	if _, ok := dtoerrors.IsDeadlockError(err); ok {
		return true
	}
	return mysql.IsDeadlock(err) || postgres.IsDeadlock(err)
}
