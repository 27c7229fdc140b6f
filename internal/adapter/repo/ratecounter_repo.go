package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dailyitems/internal/ratelimit"
)

// RateCounterRepositoryPG implements ratelimit.Store over the rate_counters
// table. Atomicity of the single-row upsert is what concurrent callers rely
// on; there is no application-level locking.
type RateCounterRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewRateCounterRepository(pool *pgxpool.Pool) *RateCounterRepositoryPG {
	return &RateCounterRepositoryPG{pool: pool}
}

var _ ratelimit.Store = (*RateCounterRepositoryPG)(nil)

// Upsert increments the counter inside its current window or resets it to 1
// when the stored window is stale, in one atomic statement.
func (r *RateCounterRepositoryPG) Upsert(ctx context.Context, deviceID, action string, windowStart time.Time) error {
	query := `
INSERT INTO rate_counters (device_id, action, window_start, count)
VALUES ($1, $2, $3, 1)
ON CONFLICT (device_id, action) DO UPDATE
SET count = CASE
        WHEN rate_counters.window_start = EXCLUDED.window_start THEN rate_counters.count + 1
        ELSE 1
    END,
    window_start = EXCLUDED.window_start;
`
	_, err := r.pool.Exec(ctx, query, deviceID, action, windowStart.UTC())
	return err
}

// Get reads the counter row back. A missing row reads as an empty counter.
func (r *RateCounterRepositoryPG) Get(ctx context.Context, deviceID, action string) (ratelimit.Counter, error) {
	query := `
SELECT window_start, count
FROM rate_counters
WHERE device_id = $1 AND action = $2;
`
	var c ratelimit.Counter
	err := r.pool.QueryRow(ctx, query, deviceID, action).Scan(&c.WindowStart, &c.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return ratelimit.Counter{}, nil
	}
	if err != nil {
		return ratelimit.Counter{}, err
	}
	return c, nil
}

// DeleteBefore removes counters whose window started before the cutoff.
func (r *RateCounterRepositoryPG) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rate_counters WHERE window_start < $1;`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
