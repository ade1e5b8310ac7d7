package object

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// ObjectStore defines the contract for saving, retrieving, and releasing binary objects.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// DetectMimeType sniffs content first; text sniffs get narrowed by extension
// so that .txt uploads report text/plain rather than a charset-qualified type.
// Every backend uses this so the same bytes classify the same way regardless
// of the configured store.
func DetectMimeType(sniff []byte, fileName string) string {
	detected := http.DetectContentType(sniff)
	if strings.HasPrefix(detected, "text/plain") {
		return "text/plain"
	}
	if detected == "application/octet-stream" && strings.EqualFold(filepath.Ext(fileName), ".txt") {
		return "text/plain"
	}
	return strings.Split(detected, ";")[0]
}
