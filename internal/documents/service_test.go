package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"studyvault-backend/internal/quota"
	"studyvault-backend/internal/queue"
	localstore "studyvault-backend/internal/shared/storage/object/local"
)

type fakeSubjects struct {
	mu     sync.Mutex
	known  map[string]bool
	counts map[string]int
}

func newFakeSubjects(subjectIDs ...string) *fakeSubjects {
	known := make(map[string]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		known[id] = true
	}
	return &fakeSubjects{known: known, counts: make(map[string]int)}
}

func (f *fakeSubjects) HasSubject(userID, subjectID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.known[subjectID]
}

func (f *fakeSubjects) AdjustDocumentsCount(userID, subjectID string, delta int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[subjectID] += delta
}

type captureQueue struct {
	mu   sync.Mutex
	sent []queue.Message
}

func (q *captureQueue) Send(ctx context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, msg)
	return nil
}

type captureProcessor struct {
	calls chan string
}

func (p *captureProcessor) ProcessDocument(ctx context.Context, userID, subjectID, documentID string) error {
	p.calls <- documentID
	return nil
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc := &Service{
		Store: localstore.New(dir),
		Repo:  NewMemoryRepo(newFakeSubjects("subject-1")),
	}
	return svc, dir
}

func storedFileCount(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk store dir: %v", err)
	}
	return count
}

func TestUploadSetsProcessingAndEnqueues(t *testing.T) {
	svc, _ := newTestService(t)
	q := &captureQueue{}
	svc.Jobs = q

	doc, err := svc.Upload(context.Background(), "user-1", "subject-1", "lecture notes", "photosynthesis", "notes.txt", strings.NewReader("light reactions happen in the thylakoid"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.Status != StatusProcessing {
		t.Fatalf("expected status %q, got %q", StatusProcessing, doc.Status)
	}
	if doc.MimeType != "text/plain" {
		t.Fatalf("expected text/plain, got %q", doc.MimeType)
	}
	if doc.Summary != "" {
		t.Fatalf("expected no summary yet, got %q", doc.Summary)
	}

	if len(q.sent) != 1 {
		t.Fatalf("expected 1 queued job, got %d", len(q.sent))
	}
	if q.sent[0].DocumentID != doc.ID || q.sent[0].SubjectID != "subject-1" || q.sent[0].UserID != "user-1" {
		t.Fatalf("unexpected queued message: %+v", q.sent[0])
	}
}

func TestUploadFallsBackToInlineProcessing(t *testing.T) {
	svc, _ := newTestService(t)
	proc := &captureProcessor{calls: make(chan string, 1)}
	svc.Processor = proc

	doc, err := svc.Upload(context.Background(), "user-1", "subject-1", "notes", "", "notes.txt", strings.NewReader("inline path"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	select {
	case got := <-proc.calls:
		if got != doc.ID {
			t.Fatalf("processor called with %q, want %q", got, doc.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}
}

func TestUploadDocumentCeiling(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	for i := 0; i < quota.MaxDocumentsPerSubject; i++ {
		name := fmt.Sprintf("doc-%d.txt", i)
		if _, err := svc.Upload(ctx, "user-1", "subject-1", name, "", name, strings.NewReader("content")); err != nil {
			t.Fatalf("Upload %d: %v", i, err)
		}
	}

	_, err := svc.Upload(ctx, "user-1", "subject-1", "extra", "", "extra.txt", strings.NewReader("too many"))
	if !errors.Is(err, quota.ErrDocumentLimit) {
		t.Fatalf("expected quota.ErrDocumentLimit, got %v", err)
	}

	// The rejected upload's blob was released.
	if got := storedFileCount(t, dir); got != quota.MaxDocumentsPerSubject {
		t.Fatalf("expected %d stored blobs, got %d", quota.MaxDocumentsPerSubject, got)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc, dir := newTestService(t)

	payload := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}
	_, err := svc.Upload(context.Background(), "user-1", "subject-1", "pic", "", "pic.png", bytes.NewReader(payload))

	var rejected FileRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected FileRejectedError, got %v", err)
	}
	if len(rejected.Violations) != 1 || rejected.Violations[0] != quota.MsgFileType {
		t.Fatalf("unexpected violations: %v", rejected.Violations)
	}
	if got := storedFileCount(t, dir); got != 0 {
		t.Fatalf("expected blob to be released, found %d files", got)
	}
}

func TestUploadRejectsOversizeFile(t *testing.T) {
	svc, dir := newTestService(t)

	payload := bytes.Repeat([]byte("a"), int(quota.MaxFileSizeBytes)+1)
	_, err := svc.Upload(context.Background(), "user-1", "subject-1", "big", "", "big.txt", bytes.NewReader(payload))

	var rejected FileRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected FileRejectedError, got %v", err)
	}
	if len(rejected.Violations) != 1 || rejected.Violations[0] != quota.MsgFileSize {
		t.Fatalf("unexpected violations: %v", rejected.Violations)
	}
	if got := storedFileCount(t, dir); got != 0 {
		t.Fatalf("expected blob to be released, found %d files", got)
	}
}

func TestUploadUnknownSubject(t *testing.T) {
	svc, dir := newTestService(t)

	_, err := svc.Upload(context.Background(), "user-1", "missing", "notes", "", "notes.txt", strings.NewReader("content"))
	if !errors.Is(err, ErrSubjectNotFound) {
		t.Fatalf("expected ErrSubjectNotFound, got %v", err)
	}
	if got := storedFileCount(t, dir); got != 0 {
		t.Fatalf("expected blob to be released, found %d files", got)
	}
}

func TestDeleteReleasesBlob(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "user-1", "subject-1", "notes", "", "notes.txt", strings.NewReader("short lived"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if got := storedFileCount(t, dir); got != 1 {
		t.Fatalf("expected 1 stored blob, got %d", got)
	}

	if err := svc.Delete(ctx, "user-1", "subject-1", doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := storedFileCount(t, dir); got != 0 {
		t.Fatalf("expected blob to be released, found %d files", got)
	}
	if _, err := svc.Get(ctx, "user-1", "subject-1", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
