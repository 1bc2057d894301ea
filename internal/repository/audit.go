package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type auditRepo struct{}

// NewAuditRepository returns a pgx-backed AuditRepository.
func NewAuditRepository() AuditRepository {
	return &auditRepo{}
}

func (r *auditRepo) Insert(ctx context.Context, db DBTX, userID uuid.UUID, checkedSteamID string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO activity_logs (user_id, checked_steam_id)
		VALUES ($1, $2)`,
		userID, checkedSteamID)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *auditRepo) ListRecent(ctx context.Context, db DBTX, limit int) ([]AuditRow, error) {
	rows, err := db.Query(ctx, `
		SELECT a.id, COALESCE(u.username, 'Unknown'), a.checked_steam_id, a.created_at
		FROM activity_logs a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditRow
	for rows.Next() {
		var e AuditRow
		if err := rows.Scan(&e.ID, &e.ParentUsername, &e.CheckedSteamID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
