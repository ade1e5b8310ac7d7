package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new user.
func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, password_hash, display_name, subjects_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, $5, $5)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		nullableString(user.DisplayName),
		user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// GetByID fetches a user by ID.
func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, password_hash, display_name, subjects_count, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

// GetByEmail fetches a user by email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT id, email, password_hash, display_name, subjects_count, created_at, updated_at
FROM users
WHERE email = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

// UpdateEmail changes a user's email address.
func (r *PGRepo) UpdateEmail(ctx context.Context, userID, email string) error {
	const query = `
UPDATE users SET email = $1, updated_at = now() WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, email, userID)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return err
	}
	updated, _ := res.RowsAffected()
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces a user's password hash.
func (r *PGRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	const query = `
UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return err
	}
	updated, _ := res.RowsAffected()
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePasswordReset records a reset token with its expiry.
func (r *PGRepo) CreatePasswordReset(ctx context.Context, token, userID string, expiresAt time.Time) error {
	const query = `
INSERT INTO password_resets (token, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.DB.ExecContext(ctx, query, token, userID, expiresAt)
	return err
}

// ConsumePasswordReset deletes a valid token and returns the owning user ID.
func (r *PGRepo) ConsumePasswordReset(ctx context.Context, token string, now time.Time) (string, error) {
	const query = `
DELETE FROM password_resets
WHERE token = $1 AND expires_at > $2
RETURNING user_id`
	var userID string
	err := r.DB.QueryRowContext(ctx, query, token, now).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrResetTokenInvalid
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	var displayName sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&displayName,
		&user.SubjectsCount,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if displayName.Valid {
		user.DisplayName = displayName.String
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
