package subjects

import (
	"context"
	"database/sql"
	"errors"

	"studyvault-backend/internal/quota"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a subject, checking and bumping the owner's counter in one
// transaction. The row lock on the user serializes concurrent creations.
func (r *PGRepo) Create(ctx context.Context, subject Subject) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var count int
	err = tx.QueryRowContext(ctx, `
SELECT subjects_count FROM users WHERE id = $1 FOR UPDATE`, subject.UserID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
		}
		return err
	}

	if !quota.CanCreateSubject(count) {
		err = quota.ErrSubjectLimit
		return err
	}

	if _, err = tx.ExecContext(ctx, `
INSERT INTO subjects (id, user_id, name, documents_count, created_at, updated_at)
VALUES ($1, $2, $3, 0, $4, $4)`,
		subject.ID, subject.UserID, subject.Name, subject.CreatedAt); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
UPDATE users SET subjects_count = subjects_count + 1, updated_at = now() WHERE id = $1`,
		subject.UserID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListByUser lists subjects newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Subject, error) {
	const query = `
SELECT id, user_id, name, documents_count, created_at, updated_at
FROM subjects
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subject
	for rows.Next() {
		var subject Subject
		if err := rows.Scan(
			&subject.ID,
			&subject.UserID,
			&subject.Name,
			&subject.DocumentsCount,
			&subject.CreatedAt,
			&subject.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, subject)
	}
	return out, rows.Err()
}

// GetByID fetches a subject scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, userID, subjectID string) (Subject, error) {
	const query = `
SELECT id, user_id, name, documents_count, created_at, updated_at
FROM subjects
WHERE user_id = $1 AND id = $2
LIMIT 1`
	var subject Subject
	err := r.DB.QueryRowContext(ctx, query, userID, subjectID).Scan(
		&subject.ID,
		&subject.UserID,
		&subject.Name,
		&subject.DocumentsCount,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subject{}, ErrNotFound
		}
		return Subject{}, err
	}
	return subject, nil
}

// Rename updates the subject's name. Names need not be unique per user.
func (r *PGRepo) Rename(ctx context.Context, userID, subjectID, name string) error {
	const query = `
UPDATE subjects SET name = $1, updated_at = now()
WHERE user_id = $2 AND id = $3`
	res, err := r.DB.ExecContext(ctx, query, name, userID, subjectID)
	if err != nil {
		return err
	}
	updated, _ := res.RowsAffected()
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the subject and decrements the owner's counter. Child
// documents must already be gone; the service orchestrates the cascade.
func (r *PGRepo) Delete(ctx context.Context, userID, subjectID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
DELETE FROM subjects WHERE user_id = $1 AND id = $2`, userID, subjectID)
	if err != nil {
		return err
	}
	deleted, _ := res.RowsAffected()
	if deleted == 0 {
		err = ErrNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx, `
UPDATE users SET subjects_count = GREATEST(subjects_count - 1, 0), updated_at = now()
WHERE id = $1`, userID); err != nil {
		return err
	}

	return tx.Commit()
}

var _ Repo = (*PGRepo)(nil)
