package subjects

import (
	"context"
	"sort"
	"sync"
	"time"

	"studyvault-backend/internal/quota"
)

// UserCounter keeps an external user record's subject counter in sync.
type UserCounter interface {
	AdjustSubjectsCount(userID string, delta int) int
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	data  map[string][]Subject // userID -> subjects
	users UserCounter
}

// NewMemoryRepo constructs a MemoryRepo. users may be nil.
func NewMemoryRepo(users UserCounter) *MemoryRepo {
	return &MemoryRepo{
		data:  make(map[string][]Subject),
		users: users,
	}
}

// Create stores a subject, enforcing the per-user ceiling under the lock.
func (r *MemoryRepo) Create(ctx context.Context, subject Subject) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !quota.CanCreateSubject(len(r.data[subject.UserID])) {
		return quota.ErrSubjectLimit
	}
	r.data[subject.UserID] = append(r.data[subject.UserID], subject)
	if r.users != nil {
		r.users.AdjustSubjectsCount(subject.UserID, 1)
	}
	return nil
}

// ListByUser returns subjects newest-first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Subject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	userSubjects := r.data[userID]
	r.mu.RUnlock()

	out := make([]Subject, len(userSubjects))
	copy(out, userSubjects)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetByID returns a subject scoped to its owner.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, subjectID string) (Subject, error) {
	if err := ctx.Err(); err != nil {
		return Subject{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, subject := range r.data[userID] {
		if subject.ID == subjectID {
			return subject, nil
		}
	}
	return Subject{}, ErrNotFound
}

// Rename updates the subject's name.
func (r *MemoryRepo) Rename(ctx context.Context, userID, subjectID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	userSubjects := r.data[userID]
	for i := range userSubjects {
		if userSubjects[i].ID == subjectID {
			userSubjects[i].Name = name
			userSubjects[i].UpdatedAt = time.Now().UTC()
			r.data[userID] = userSubjects
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes the subject.
func (r *MemoryRepo) Delete(ctx context.Context, userID, subjectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	userSubjects := r.data[userID]
	for i := range userSubjects {
		if userSubjects[i].ID == subjectID {
			r.data[userID] = append(userSubjects[:i], userSubjects[i+1:]...)
			if r.users != nil {
				r.users.AdjustSubjectsCount(userID, -1)
			}
			return nil
		}
	}
	return ErrNotFound
}

// HasSubject reports whether the user owns the subject.
func (r *MemoryRepo) HasSubject(userID, subjectID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, subject := range r.data[userID] {
		if subject.ID == subjectID {
			return true
		}
	}
	return false
}

// AdjustDocumentsCount mutates a subject's cached document counter; used by
// the documents memory repo.
func (r *MemoryRepo) AdjustDocumentsCount(userID, subjectID string, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userSubjects := r.data[userID]
	for i := range userSubjects {
		if userSubjects[i].ID == subjectID {
			userSubjects[i].DocumentsCount += delta
			if userSubjects[i].DocumentsCount < 0 {
				userSubjects[i].DocumentsCount = 0
			}
			r.data[userID] = userSubjects
			return
		}
	}
}

var _ Repo = (*MemoryRepo)(nil)
