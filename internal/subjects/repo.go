package subjects

import "context"

// Repo defines persistence operations for subjects.
//
// Create enforces the per-user subject ceiling atomically against the store:
// the owner's counter is locked, checked, and incremented in the same
// transaction as the insert, so two concurrent creations cannot both slip
// under the limit. It returns quota.ErrSubjectLimit when the ceiling is hit.
type Repo interface {
	Create(ctx context.Context, subject Subject) error
	ListByUser(ctx context.Context, userID string) ([]Subject, error)
	GetByID(ctx context.Context, userID, subjectID string) (Subject, error)
	Rename(ctx context.Context, userID, subjectID, name string) error
	Delete(ctx context.Context, userID, subjectID string) error
}
