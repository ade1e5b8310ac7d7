package quota

import "errors"

// User-visible messages. Quota rejections and upload violations read differently
// on purpose; handlers must not collapse them into one generic failure string.
const (
	MsgSubjectLimit  = "Maximum limit of 5 subjects reached"
	MsgDocumentLimit = "Maximum limit of 4 documents reached"
	MsgFileType      = "Only PDF and TXT files are allowed"
	MsgFileSize      = "File size should not exceed 10MB"
)

var (
	// ErrSubjectLimit indicates the per-user subject ceiling was hit.
	ErrSubjectLimit = errors.New(MsgSubjectLimit)
	// ErrDocumentLimit indicates the per-subject document ceiling was hit.
	ErrDocumentLimit = errors.New(MsgDocumentLimit)
)
