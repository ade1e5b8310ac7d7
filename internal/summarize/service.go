package summarize

import (
	"context"
	"errors"
	"time"

	"studyvault-backend/internal/documents"
	"studyvault-backend/internal/shared/metrics"
	"studyvault-backend/internal/shared/storage/object"
	"studyvault-backend/internal/shared/telemetry"
)

// Service generates summaries for uploaded documents.
type Service struct {
	Repo  documents.Repo
	Store object.ObjectStore
}

// ProcessDocument summarizes one document and flips it from processing to
// ready. Re-delivery of an already-ready document is a no-op, so the operation
// is safe to retry.
func (s *Service) ProcessDocument(ctx context.Context, userID, subjectID, documentID string) error {
	start := time.Now()

	doc, err := s.Repo.GetByID(ctx, userID, subjectID, documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			// Deleted between enqueue and processing; nothing to do.
			telemetry.Info("summary.document_gone", map[string]any{"document_id": documentID})
			return nil
		}
		metrics.IncSummaryJobsFailed()
		return err
	}
	if doc.Status == documents.StatusReady {
		telemetry.Info("summary.already_ready", map[string]any{"document_id": documentID})
		return nil
	}

	text, err := ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType)
	if err != nil {
		// Leave something readable rather than a document stuck in processing.
		telemetry.Error("summary.extract_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		metrics.IncSummaryJobsFailed()
		return s.Repo.SetSummary(ctx, userID, documentID, "Summary unavailable: the document text could not be read.")
	}

	summary := Summarize(text)
	if err := s.Repo.SetSummary(ctx, userID, documentID, summary); err != nil {
		metrics.IncSummaryJobsFailed()
		return err
	}

	metrics.IncSummaryJobsCompleted()
	metrics.ObserveSummaryDurationMs(metrics.SinceMillis(start))
	telemetry.Info("summary.completed", map[string]any{
		"document_id": documentID,
		"subject_id":  subjectID,
		"duration_ms": metrics.SinceMillis(start),
	})
	return nil
}
