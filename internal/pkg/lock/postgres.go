package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLocker maps keys onto session-level advisory locks. A held key pins one connection
// of pool until it is released, so pool must not be the pool the lock holders query through.
// Waiters poll with pg_try_advisory_lock and hand their connection back between attempts.
type PostgresLocker struct {
	pool  *pgxpool.Pool
	retry time.Duration
}

func NewPostgresLocker(pool *pgxpool.Pool, retry time.Duration) *PostgresLocker {
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &PostgresLocker{pool: pool, retry: retry}
}

// Lock implements Locker.
func (l *PostgresLocker) Lock(ctx context.Context, key string) (func(), error) {
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		conn, err := l.pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLockUnavailable, key, err)
		}

		var acquired bool
		err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtextextended($1, 0))`, key).Scan(&acquired)
		if err != nil {
			conn.Release()
			return nil, fmt.Errorf("%w: %s: %w", ErrLockUnavailable, key, err)
		}

		if acquired {
			var once sync.Once
			return func() {
				once.Do(func() {
					releaseCtx := context.WithoutCancel(ctx)
					if _, err := conn.Exec(releaseCtx, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, key); err != nil {
						// closing the session drops every advisory lock it holds
						_ = conn.Conn().Close(releaseCtx)
					}
					conn.Release()
				})
			}, nil
		}

		conn.Release()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockUnavailable, key, ctx.Err())
		case <-ticker.C:
		}
	}
}
