package guard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playwatch/platform/internal/domain"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// RecordAttempt inserts a login attempt row.
func RecordAttempt(ctx context.Context, pool *pgxpool.Pool, username, ip string, success bool) {
	_, _ = pool.Exec(ctx, `
		INSERT INTO login_attempts (username, ip_address, success)
		VALUES ($1, $2, $3)`,
		username, ip, success)
}

// CheckLocked returns ErrAccountLocked if the account has >= MaxAttempts failed
// logins within the lockout window.
func CheckLocked(ctx context.Context, pool *pgxpool.Pool, username string) error {
	var count int
	err := pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE username = $1 AND success = false
		  AND created_at > $2`,
		username, time.Now().Add(-LockoutWindow)).Scan(&count)
	if err != nil {
		return nil // fail open on DB error so logins are never blocked by an outage
	}
	if count >= MaxAttempts {
		return domain.ErrAccountLocked("too many failed login attempts, try again later")
	}
	return nil
}
