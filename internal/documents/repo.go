package documents

import "context"

// Repo defines persistence operations for documents.
//
// Create enforces the per-subject document ceiling atomically: the subject
// row is locked, its counter checked, and the insert plus increment commit
// together. It returns quota.ErrDocumentLimit at the ceiling and
// ErrSubjectNotFound when the subject does not belong to the user.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	ListBySubject(ctx context.Context, userID, subjectID string) ([]Document, error)
	GetByID(ctx context.Context, userID, subjectID, documentID string) (Document, error)
	Delete(ctx context.Context, userID, subjectID, documentID string) error
	SetSummary(ctx context.Context, userID, documentID, summary string) error
}
