package documents

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

// Create inserts a document, checking and bumping the subject's counter in
// one transaction. The row lock on the subject serializes concurrent uploads.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
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
SELECT documents_count FROM subjects WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		doc.SubjectID, doc.UserID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrSubjectNotFound
		}
		return err
	}

	if !quota.CanCreateDocument(count) {
		err = quota.ErrDocumentLimit
		return err
	}

	if _, err = tx.ExecContext(ctx, `
INSERT INTO documents (id, subject_id, user_id, name, topic, mime_type, size_bytes, storage_key, status, summary, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL, $10)`,
		doc.ID,
		doc.SubjectID,
		doc.UserID,
		doc.Name,
		nullableString(doc.Topic),
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		doc.Status,
		doc.CreatedAt,
	); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
UPDATE subjects SET documents_count = documents_count + 1, updated_at = now() WHERE id = $1`,
		doc.SubjectID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListBySubject lists documents newest-first.
func (r *PGRepo) ListBySubject(ctx context.Context, userID, subjectID string) ([]Document, error) {
	const query = `
SELECT id, subject_id, user_id, name, topic, mime_type, size_bytes, storage_key, status, summary, created_at
FROM documents
WHERE user_id = $1 AND subject_id = $2
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// GetByID fetches a document scoped to its owner and subject.
func (r *PGRepo) GetByID(ctx context.Context, userID, subjectID, documentID string) (Document, error) {
	const query = `
SELECT id, subject_id, user_id, name, topic, mime_type, size_bytes, storage_key, status, summary, created_at
FROM documents
WHERE user_id = $1 AND subject_id = $2 AND id = $3
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, userID, subjectID, documentID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// Delete removes the document and decrements the subject's counter.
func (r *PGRepo) Delete(ctx context.Context, userID, subjectID, documentID string) error {
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
DELETE FROM documents WHERE user_id = $1 AND subject_id = $2 AND id = $3`,
		userID, subjectID, documentID)
	if err != nil {
		return err
	}
	deleted, _ := res.RowsAffected()
	if deleted == 0 {
		err = ErrNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx, `
UPDATE subjects SET documents_count = GREATEST(documents_count - 1, 0), updated_at = now()
WHERE id = $1`, subjectID); err != nil {
		return err
	}

	return tx.Commit()
}

// SetSummary stores the summary and flips status to ready. The status guard
// makes redelivered jobs a no-op.
func (r *PGRepo) SetSummary(ctx context.Context, userID, documentID, summary string) error {
	const query = `
UPDATE documents
SET summary = $1, status = $2
WHERE user_id = $3 AND id = $4 AND status = $5`
	_, err := r.DB.ExecContext(ctx, query, summary, StatusReady, userID, documentID, StatusProcessing)
	return err
}

func scanDocument(scan func(dest ...any) error) (Document, error) {
	var doc Document
	var topic sql.NullString
	var summary sql.NullString
	err := scan(
		&doc.ID,
		&doc.SubjectID,
		&doc.UserID,
		&doc.Name,
		&topic,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageKey,
		&doc.Status,
		&summary,
		&doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if topic.Valid {
		doc.Topic = topic.String
	}
	if summary.Valid {
		doc.Summary = summary.String
	}
	return doc, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
