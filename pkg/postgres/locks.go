package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// dateLockKey namespaces the advisory lock key so other users of the database cannot collide with it
func dateLockKey(date string) string {
	return "staffcover:coverage_date:" + date
}

// LockDate takes a session-level advisory lock for the date on a dedicated connection.
// Runs in other processes block until the returned function releases it.
func (d *DB) LockDate(ctx context.Context, date string) (func(), error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for date lock: %w", err)
	}

	key := dateLockKey(date)
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, key); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to take advisory lock: %w", err)
	}
	d.logger.Debug("Took advisory lock", zap.String("date", date))

	return func() {
		// Release must still run after the caller's context is cancelled
		releaseCtx := context.WithoutCancel(ctx)
		if _, err := conn.Exec(releaseCtx, `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
			d.logger.Warn("Failed to release advisory lock, closing connection",
				zap.String("date", date), zap.Error(err))
			// Closing the session drops every advisory lock it holds
			_ = conn.Conn().Close(releaseCtx)
		}
		conn.Release()
	}, nil
}
