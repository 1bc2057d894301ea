package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/playwatch/platform/internal/domain"
)

type childRepo struct{}

// NewChildRepository returns a pgx-backed ChildRepository.
func NewChildRepository() ChildRepository {
	return &childRepo{}
}

const childColumns = `id, parent_id, name, steam_id, weekly_limit_hours, last_notified_at, created_at`

func (r *childRepo) ListAll(ctx context.Context, db DBTX) ([]domain.Child, error) {
	rows, err := db.Query(ctx,
		`SELECT `+childColumns+` FROM children ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()
	return collectChildren(rows)
}

func (r *childRepo) ListByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Child, error) {
	rows, err := db.Query(ctx,
		`SELECT `+childColumns+` FROM children WHERE parent_id = $1 ORDER BY created_at`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children by parent: %w", err)
	}
	defer rows.Close()
	return collectChildren(rows)
}

func (r *childRepo) FindForParent(ctx context.Context, db DBTX, childID, parentID uuid.UUID) (*domain.Child, error) {
	row := db.QueryRow(ctx,
		`SELECT `+childColumns+` FROM children WHERE id = $1 AND parent_id = $2`,
		childID, parentID)
	return scanChild(row)
}

func (r *childRepo) Create(ctx context.Context, db DBTX, child *domain.Child) error {
	_, err := db.Exec(ctx, `
		INSERT INTO children (id, parent_id, name, steam_id, weekly_limit_hours)
		VALUES ($1, $2, $3, $4, $5)`,
		child.ID, child.ParentID, child.Name, child.SteamID, child.WeeklyLimitHours)
	if err != nil {
		return fmt.Errorf("insert child: %w", err)
	}
	return nil
}

func (r *childRepo) Update(ctx context.Context, db DBTX, child *domain.Child) (int64, error) {
	tag, err := db.Exec(ctx, `
		UPDATE children SET name = $3, steam_id = $4, weekly_limit_hours = $5
		WHERE id = $1 AND parent_id = $2`,
		child.ID, child.ParentID, child.Name, child.SteamID, child.WeeklyLimitHours)
	if err != nil {
		return 0, fmt.Errorf("update child: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *childRepo) Delete(ctx context.Context, db DBTX, childID, parentID uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx,
		`DELETE FROM children WHERE id = $1 AND parent_id = $2`, childID, parentID)
	if err != nil {
		return 0, fmt.Errorf("delete child: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkNotified updates last_notified_at only if it still holds the value the
// evaluator read. IS NOT DISTINCT FROM makes the NULL case compare equal.
func (r *childRepo) MarkNotified(ctx context.Context, db DBTX, childID uuid.UUID, at time.Time, prev *time.Time) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE children SET last_notified_at = $2
		WHERE id = $1 AND last_notified_at IS NOT DISTINCT FROM $3`,
		childID, at, prev)
	if err != nil {
		return false, fmt.Errorf("mark notified: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func collectChildren(rows pgx.Rows) ([]domain.Child, error) {
	var children []domain.Child
	for rows.Next() {
		var c domain.Child
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.SteamID,
			&c.WeeklyLimitHours, &c.LastNotifiedAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, c)
	}
	return children, rows.Err()
}

func scanChild(row pgx.Row) (*domain.Child, error) {
	var c domain.Child
	err := row.Scan(&c.ID, &c.ParentID, &c.Name, &c.SteamID,
		&c.WeeklyLimitHours, &c.LastNotifiedAt, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan child: %w", err)
	}
	return &c, nil
}
