package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/playwatch/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to users.
type UserRepository interface {
	// FindByUsername returns a user by username, or nil if not found.
	FindByUsername(ctx context.Context, db DBTX, username string) (*domain.User, error)

	// FindByID returns a user by ID, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context, db DBTX) ([]domain.User, error)

	// Create inserts a new user.
	Create(ctx context.Context, db DBTX, user *domain.User) error

	// Update modifies username, role and contact fields. Returns the number
	// of rows affected.
	Update(ctx context.Context, db DBTX, user *domain.User) (int64, error)

	// UpdateContact modifies only the notification contact fields.
	UpdateContact(ctx context.Context, db DBTX, id uuid.UUID, contact domain.Contact) (int64, error)

	// Delete removes a user. Child rows cascade. Returns rows affected.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) (int64, error)

	// CountAdmins returns the number of admin-role accounts.
	CountAdmins(ctx context.Context, db DBTX) (int, error)
}

// ChildRepository provides access to children.
type ChildRepository interface {
	// ListAll returns the entire monitored roster (sweep path).
	ListAll(ctx context.Context, db DBTX) ([]domain.Child, error)

	// ListByParent returns all children owned by a guardian.
	ListByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Child, error)

	// FindForParent returns a child only if it belongs to the guardian,
	// or nil otherwise. Callers map nil to NOT_FOUND, never FORBIDDEN.
	FindForParent(ctx context.Context, db DBTX, childID, parentID uuid.UUID) (*domain.Child, error)

	// Create inserts a new child.
	Create(ctx context.Context, db DBTX, child *domain.Child) error

	// Update modifies name, steam id and limit, scoped to the guardian.
	// Returns rows affected.
	Update(ctx context.Context, db DBTX, child *domain.Child) (int64, error)

	// Delete removes a child, scoped to the guardian. Returns rows affected.
	Delete(ctx context.Context, db DBTX, childID, parentID uuid.UUID) (int64, error)

	// MarkNotified performs a compare-and-set on last_notified_at: the
	// update applies only if the stored value still equals prev, so two
	// concurrent evaluations cannot both claim the same notification.
	MarkNotified(ctx context.Context, db DBTX, childID uuid.UUID, at time.Time, prev *time.Time) (bool, error)
}

// AuditRepository provides access to the append-only activity_logs.
type AuditRepository interface {
	// Insert appends one audit entry.
	Insert(ctx context.Context, db DBTX, userID uuid.UUID, checkedSteamID string) error

	// ListRecent returns the latest entries with guardian usernames resolved.
	ListRecent(ctx context.Context, db DBTX, limit int) ([]AuditRow, error)
}

// AuditRow is an audit entry joined with the guardian's username.
type AuditRow struct {
	ID             int64     `json:"id"`
	ParentUsername string    `json:"parent_username"`
	CheckedSteamID string    `json:"checked_steam_id"`
	CreatedAt      time.Time `json:"timestamp"`
}

// RecordRepository provides access to playtime_records check history.
type RecordRepository interface {
	// Insert stores the aggregated total of one completed check.
	Insert(ctx context.Context, db DBTX, steamID string, totalMinutes int) error
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (duplicate username, email or steam id).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
