package documents

import "time"

// Processing status. A document starts at processing and moves to ready
// exactly once, when its summary lands.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
)

// Document is an uploaded file belonging to exactly one subject.
type Document struct {
	ID         string
	SubjectID  string
	UserID     string
	Name       string
	Topic      string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	Status     string
	Summary    string
	CreatedAt  time.Time
}
