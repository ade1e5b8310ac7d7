package subjects

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyvault-backend/internal/documents"
	"studyvault-backend/internal/quota"
	"studyvault-backend/internal/shared/metrics"
)

// Service contains business logic for subjects.
type Service struct {
	Repo Repo
	Docs *documents.Service
}

// Create records a new subject for the user, subject to the per-user ceiling.
func (s *Service) Create(ctx context.Context, userID, name string) (Subject, error) {
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return Subject{}, ErrInvalidInput
	}

	now := time.Now().UTC()
	subject := Subject{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repo.Create(ctx, subject); err != nil {
		if errors.Is(err, quota.ErrSubjectLimit) {
			metrics.IncQuotaRejections()
		}
		return Subject{}, err
	}
	return subject, nil
}

// List returns the user's subjects, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Subject, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Get returns a single subject.
func (s *Service) Get(ctx context.Context, userID, subjectID string) (Subject, error) {
	if userID == "" || subjectID == "" {
		return Subject{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, subjectID)
}

// Rename updates a subject's name. The document count is untouched.
func (s *Service) Rename(ctx context.Context, userID, subjectID, name string) (Subject, error) {
	name = strings.TrimSpace(name)
	if userID == "" || subjectID == "" {
		return Subject{}, ErrInvalidInput
	}
	if name == "" {
		return Subject{}, ErrInvalidInput
	}
	if err := s.Repo.Rename(ctx, userID, subjectID, name); err != nil {
		return Subject{}, err
	}
	return s.Repo.GetByID(ctx, userID, subjectID)
}

// Delete removes a subject and everything under it: each document's record
// and blob go first, then the subject row itself. A failure partway leaves
// the subject present so the delete can be retried.
func (s *Service) Delete(ctx context.Context, userID, subjectID string) error {
	if userID == "" || subjectID == "" {
		return ErrInvalidInput
	}
	if _, err := s.Repo.GetByID(ctx, userID, subjectID); err != nil {
		return err
	}
	if s.Docs != nil {
		if err := s.Docs.DeleteBySubject(ctx, userID, subjectID); err != nil {
			return err
		}
	}
	return s.Repo.Delete(ctx, userID, subjectID)
}
