// Package quota gates creation of subjects and documents against fixed
// per-owner ceilings and validates uploads before any blob is written.
package quota

import (
	"strings"
)

const (
	MaxSubjectsPerUser     = 5
	MaxDocumentsPerSubject = 4
	MaxFileSizeBytes       = 10 << 20 // 10 MiB
)

// AllowedMimeTypes lists the upload types accepted for documents.
var AllowedMimeTypes = []string{"application/pdf", "text/plain"}

// CanCreateSubject reports whether a user with currentCount subjects may create another.
func CanCreateSubject(currentCount int) bool {
	return currentCount < MaxSubjectsPerUser
}

// CanCreateDocument reports whether a subject with currentCount documents may take another.
func CanCreateDocument(currentCount int) bool {
	return currentCount < MaxDocumentsPerSubject
}

// ValidateUpload checks an upload's MIME type and size against the allow-list
// and ceiling. It returns one human-readable violation per failed check; an
// empty slice means the upload is valid. A file of exactly MaxFileSizeBytes passes.
func ValidateUpload(mimeType string, sizeBytes int64) []string {
	var violations []string
	if !mimeAllowed(mimeType) {
		violations = append(violations, MsgFileType)
	}
	if sizeBytes > MaxFileSizeBytes {
		violations = append(violations, MsgFileSize)
	}
	return violations
}

func mimeAllowed(mimeType string) bool {
	normalized := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	for _, allowed := range AllowedMimeTypes {
		if normalized == allowed {
			return true
		}
	}
	return false
}
