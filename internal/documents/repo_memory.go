package documents

import (
	"context"
	"sort"
	"sync"

	"studyvault-backend/internal/quota"
)

// SubjectChecker lets the memory repo validate ownership and keep the
// subject's cached document counter in sync.
type SubjectChecker interface {
	HasSubject(userID, subjectID string) bool
	AdjustDocumentsCount(userID, subjectID string, delta int)
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	data     map[string][]Document // subjectID -> documents
	subjects SubjectChecker
}

// NewMemoryRepo constructs a MemoryRepo. subjects may be nil, in which case
// ownership checks are skipped.
func NewMemoryRepo(subjects SubjectChecker) *MemoryRepo {
	return &MemoryRepo{
		data:     make(map[string][]Document),
		subjects: subjects,
	}
}

// Create stores a document, enforcing the per-subject ceiling under the lock.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.subjects != nil && !r.subjects.HasSubject(doc.UserID, doc.SubjectID) {
		return ErrSubjectNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !quota.CanCreateDocument(len(r.data[doc.SubjectID])) {
		return quota.ErrDocumentLimit
	}
	r.data[doc.SubjectID] = append(r.data[doc.SubjectID], doc)
	if r.subjects != nil {
		r.subjects.AdjustDocumentsCount(doc.UserID, doc.SubjectID, 1)
	}
	return nil
}

// ListBySubject returns documents newest-first.
func (r *MemoryRepo) ListBySubject(ctx context.Context, userID, subjectID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	subjectDocs := r.data[subjectID]
	r.mu.RUnlock()

	var out []Document
	for _, doc := range subjectDocs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetByID returns a document scoped to its owner and subject.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, subjectID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.data[subjectID] {
		if doc.ID == documentID && doc.UserID == userID {
			return doc, nil
		}
	}
	return Document{}, ErrNotFound
}

// Delete removes the document.
func (r *MemoryRepo) Delete(ctx context.Context, userID, subjectID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	subjectDocs := r.data[subjectID]
	for i := range subjectDocs {
		if subjectDocs[i].ID == documentID && subjectDocs[i].UserID == userID {
			r.data[subjectID] = append(subjectDocs[:i], subjectDocs[i+1:]...)
			if r.subjects != nil {
				r.subjects.AdjustDocumentsCount(userID, subjectID, -1)
			}
			return nil
		}
	}
	return ErrNotFound
}

// SetSummary stores the summary and flips status to ready, once.
func (r *MemoryRepo) SetSummary(ctx context.Context, userID, documentID, summary string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for subjectID, subjectDocs := range r.data {
		for i := range subjectDocs {
			if subjectDocs[i].ID == documentID && subjectDocs[i].UserID == userID {
				if subjectDocs[i].Status == StatusProcessing {
					subjectDocs[i].Summary = summary
					subjectDocs[i].Status = StatusReady
					r.data[subjectID] = subjectDocs
				}
				return nil
			}
		}
	}
	return ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
