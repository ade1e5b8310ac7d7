package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyvault-backend/internal/quota"
	"studyvault-backend/internal/queue"
	"studyvault-backend/internal/shared/metrics"
	"studyvault-backend/internal/shared/storage/object"
	"studyvault-backend/internal/shared/telemetry"
)

// Processor produces a document's summary; implemented by the summarize package.
type Processor interface {
	ProcessDocument(ctx context.Context, userID, subjectID, documentID string) error
}

// Service contains business logic for documents.
type Service struct {
	Store     object.ObjectStore
	Repo      Repo
	Jobs      queue.Client
	Processor Processor
}

// Upload validates the file, saves the blob, records the document at status
// processing, and hands it to the summarization pipeline. The blob write
// precedes the record write; if the record is rejected the blob is released
// so no orphan remains.
func (s *Service) Upload(ctx context.Context, userID, subjectID, name, topic, fileName string, r io.Reader) (Document, error) {
	if strings.TrimSpace(name) == "" || fileName == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	// Server-side revalidation against the sniffed type and actual byte count.
	if violations := quota.ValidateUpload(mimeType, size); len(violations) > 0 {
		s.releaseBlob(ctx, storageKey)
		return Document{}, FileRejectedError{Violations: violations}
	}

	doc := Document{
		ID:         uuid.NewString(),
		SubjectID:  subjectID,
		UserID:     userID,
		Name:       strings.TrimSpace(name),
		Topic:      strings.TrimSpace(topic),
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		Status:     StatusProcessing,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		s.releaseBlob(ctx, storageKey)
		if errors.Is(err, quota.ErrDocumentLimit) {
			metrics.IncQuotaRejections()
		}
		return Document{}, err
	}

	metrics.IncUploads()
	s.enqueueSummary(ctx, doc)
	return doc, nil
}

// List returns a subject's documents, newest first.
func (s *Service) List(ctx context.Context, userID, subjectID string) ([]Document, error) {
	if userID == "" || subjectID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListBySubject(ctx, userID, subjectID)
}

// Get returns a single document.
func (s *Service) Get(ctx context.Context, userID, subjectID, documentID string) (Document, error) {
	if userID == "" || subjectID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, subjectID, documentID)
}

// Open returns the document's content for download.
func (s *Service) Open(ctx context.Context, userID, subjectID, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, userID, subjectID, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	body, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, body, nil
}

// Delete removes the record and releases the blob. The record goes first so a
// failure leaves a re-deletable document rather than a dangling row.
func (s *Service) Delete(ctx context.Context, userID, subjectID, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, userID, subjectID, documentID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID, subjectID, documentID); err != nil {
		return err
	}
	s.releaseBlob(ctx, doc.StorageKey)
	return nil
}

// DeleteBySubject removes every document in a subject, records and blobs.
// Used by the subject cascade; idempotent across partial prior runs.
func (s *Service) DeleteBySubject(ctx context.Context, userID, subjectID string) error {
	docs, err := s.Repo.ListBySubject(ctx, userID, subjectID)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.Repo.Delete(ctx, userID, subjectID, doc.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		s.releaseBlob(ctx, doc.StorageKey)
	}
	return nil
}

func (s *Service) enqueueSummary(ctx context.Context, doc Document) {
	msg := queue.Message{
		DocumentID: doc.ID,
		SubjectID:  doc.SubjectID,
		UserID:     doc.UserID,
		RequestID:  requestIDFromContext(ctx),
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	}

	if s.Jobs != nil {
		if err := s.Jobs.Send(ctx, msg); err != nil {
			telemetry.Error("summary.enqueue_failed", map[string]any{
				"document_id": doc.ID,
				"error":       err.Error(),
			})
		}
		return
	}

	// No queue configured: process in this process, off the request path.
	if s.Processor != nil {
		go func() {
			if err := s.Processor.ProcessDocument(context.Background(), doc.UserID, doc.SubjectID, doc.ID); err != nil {
				telemetry.Error("summary.inline_failed", map[string]any{
					"document_id": doc.ID,
					"error":       err.Error(),
				})
			}
		}()
	}
}

func (s *Service) releaseBlob(ctx context.Context, storageKey string) {
	if storageKey == "" {
		return
	}
	if err := s.Store.Delete(ctx, storageKey); err != nil {
		telemetry.Error("blob.release_failed", map[string]any{
			"storage_key": storageKey,
			"error":       err.Error(),
		})
	}
}

type requestIDKey struct{}

// WithRequestID stores a request ID for propagation into queue messages.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
