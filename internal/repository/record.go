package repository

import (
	"context"
	"fmt"
)

type recordRepo struct{}

// NewRecordRepository returns a pgx-backed RecordRepository.
func NewRecordRepository() RecordRepository {
	return &recordRepo{}
}

func (r *recordRepo) Insert(ctx context.Context, db DBTX, steamID string, totalMinutes int) error {
	_, err := db.Exec(ctx, `
		INSERT INTO playtime_records (steam_id, total_playtime_minutes)
		VALUES ($1, $2)`,
		steamID, totalMinutes)
	if err != nil {
		return fmt.Errorf("insert playtime record: %w", err)
	}
	return nil
}
