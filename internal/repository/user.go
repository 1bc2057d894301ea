package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/playwatch/platform/internal/domain"
)

type userRepo struct{}

// NewUserRepository returns a pgx-backed UserRepository.
func NewUserRepository() UserRepository {
	return &userRepo{}
}

const userColumns = `id, username, password_hash, role,
	COALESCE(email, ''), COALESCE(discord_webhook_url, ''), COALESCE(steam_id, ''),
	parent_id, created_at`

func (r *userRepo) FindByUsername(ctx context.Context, db DBTX, username string) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *userRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepo) List(ctx context.Context, db DBTX) ([]domain.User, error) {
	rows, err := db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) Create(ctx context.Context, db DBTX, user *domain.User) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, role, email, discord_webhook_url, steam_id, parent_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)`,
		user.ID, user.Username, user.PasswordHash, user.Role,
		user.Email, user.DiscordWebhookURL, user.SteamID, user.ParentID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) Update(ctx context.Context, db DBTX, user *domain.User) (int64, error) {
	tag, err := db.Exec(ctx, `
		UPDATE users SET username = $2, role = $3,
			email = NULLIF($4, ''), discord_webhook_url = NULLIF($5, '')
		WHERE id = $1`,
		user.ID, user.Username, user.Role, user.Email, user.DiscordWebhookURL)
	if err != nil {
		return 0, fmt.Errorf("update user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *userRepo) UpdateContact(ctx context.Context, db DBTX, id uuid.UUID, contact domain.Contact) (int64, error) {
	tag, err := db.Exec(ctx, `
		UPDATE users SET email = NULLIF($2, ''), discord_webhook_url = NULLIF($3, '')
		WHERE id = $1`,
		id, contact.Email, contact.DiscordWebhookURL)
	if err != nil {
		return 0, fmt.Errorf("update contact: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *userRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *userRepo) CountAdmins(ctx context.Context, db DBTX) (int, error) {
	var count int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role,
		&u.Email, &u.DiscordWebhookURL, &u.SteamID,
		&u.ParentID, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
