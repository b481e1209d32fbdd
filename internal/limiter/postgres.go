package limiter

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is a PostgreSQL-backed fixed-window limiter.
type PG struct {
	pool   pgxQuerier
	window time.Duration
	max    int
	now    func() time.Time
}

type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter allowing max hits per window.
func NewPG(pool *pgxpool.Pool, window time.Duration, max int) *PG {
	return NewPGWithQuerier(pool, window, max)
}

// NewPGWithQuerier constructs a PostgreSQL-backed limiter over any querier.
func NewPGWithQuerier(q pgxQuerier, window time.Duration, max int) *PG {
	return &PG{pool: q, window: window, max: max, now: time.Now}
}

// Hit upserts the counter row, starting a fresh window when the stored one has elapsed.
func (l *PG) Hit(ctx context.Context, bucket string, subject []byte) (bool, time.Duration, error) {
	const q = `
INSERT INTO intake_limiter (bucket, subject, hits, window_start)
VALUES ($1, $2, 1, now())
ON CONFLICT (bucket, subject) DO UPDATE
SET
  hits = CASE WHEN now() - intake_limiter.window_start >= $3 * interval '1 second'
              THEN 1 ELSE intake_limiter.hits + 1 END,
  window_start = CASE WHEN now() - intake_limiter.window_start >= $3 * interval '1 second'
              THEN now() ELSE intake_limiter.window_start END
RETURNING hits, window_start`
	var (
		hits  int
		start time.Time
	)
	if err := l.pool.QueryRow(ctx, q, bucket, subject, l.window.Seconds()).Scan(&hits, &start); err != nil {
		return false, 0, err
	}
	if hits > l.max {
		return false, retryAfter(start, l.window, l.now()), nil
	}
	return true, 0, nil
}
