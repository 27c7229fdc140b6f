// Package ratelimit implements a fixed-window, per-device, per-action request
// limiter over a durable counter store.
package ratelimit

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// Counter is the stored state for one (device, action) pair.
type Counter struct {
	WindowStart time.Time
	Count       int
}

// Store is the durable counter backend. Correctness across concurrent callers
// rests on the atomicity of Upsert for a single key, not on locking here.
type Store interface {
	// Upsert increments the counter when its stored window start equals
	// windowStart, otherwise resets the count to 1 and adopts windowStart.
	Upsert(ctx context.Context, deviceID, action string, windowStart time.Time) error
	Get(ctx context.Context, deviceID, action string) (Counter, error)
	// DeleteBefore removes counters whose window started before the cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Decision is the outcome of a limiter check.
type Decision struct {
	OK        bool
	Remaining int
	// RetryAfter is how long a blocked caller should wait. Always at least
	// one second and at most the window length.
	RetryAfter time.Duration
}

const (
	cleanupProbability = 0.01
	cleanupRetention   = 7 * 24 * time.Hour
)

// Limiter gates calls by (device, action) against per-action policies.
type Limiter struct {
	store    Store
	policies Policies
	logger   zerolog.Logger

	now  func() time.Time
	rand func() float64
}

// NewLimiter builds a limiter over the given store and policy set.
func NewLimiter(store Store, policies Policies, logger zerolog.Logger) *Limiter {
	return &Limiter{
		store:    store,
		policies: policies,
		logger:   logger,
		now:      time.Now,
		rand:     rand.Float64,
	}
}

// Check records one call for (deviceID, action) and decides whether it may
// proceed. Under concurrent writers racing a window rollover the re-read may
// observe a foreign window start; that case is allowed rather than blocked,
// trading strictness at window boundaries for availability.
func (l *Limiter) Check(ctx context.Context, deviceID, action string) (Decision, error) {
	policy := l.policies.For(action)
	window := time.Duration(policy.WindowSeconds) * time.Second
	now := l.now()
	windowStart := now.Truncate(window)

	if err := l.store.Upsert(ctx, deviceID, action, windowStart); err != nil {
		return Decision{}, fmt.Errorf("upsert counter: %w", err)
	}
	counter, err := l.store.Get(ctx, deviceID, action)
	if err != nil {
		return Decision{}, fmt.Errorf("read counter: %w", err)
	}

	l.maybeCleanup(ctx, now)

	if !counter.WindowStart.Equal(windowStart) {
		// Another writer rolled the window between our upsert and read.
		return Decision{OK: true, Remaining: policy.Ceiling - 1}, nil
	}
	if counter.Count > policy.Ceiling {
		retry := windowStart.Add(window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		if retry > window {
			retry = window
		}
		return Decision{OK: false, RetryAfter: retry}, nil
	}
	remaining := policy.Ceiling - counter.Count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{OK: true, Remaining: remaining}, nil
}

// maybeCleanup opportunistically prunes stale counters on a small fraction of
// calls, amortizing maintenance without a dedicated sweep. Best effort.
func (l *Limiter) maybeCleanup(ctx context.Context, now time.Time) {
	if l.rand() >= cleanupProbability {
		return
	}
	n, err := l.store.DeleteBefore(ctx, now.Add(-cleanupRetention))
	if err != nil {
		l.logger.Debug().Err(err).Msg("rate counter cleanup failed")
		return
	}
	if n > 0 {
		l.logger.Debug().Int64("removed", n).Msg("pruned stale rate counters")
	}
}
