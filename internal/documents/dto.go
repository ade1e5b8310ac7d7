package documents

import "time"

// DocumentResponse is the wire shape for a document.
type DocumentResponse struct {
	ID         string `json:"documentId"`
	Name       string `json:"name"`
	Topic      string `json:"topic,omitempty"`
	MimeType   string `json:"mimeType"`
	SizeBytes  int64  `json:"sizeBytes"`
	Status     string `json:"status"`
	Summary    string `json:"summary,omitempty"`
	UploadedAt string `json:"uploadedAt"`
}

// ToResponse converts a Document to its wire shape.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		Name:       doc.Name,
		Topic:      doc.Topic,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		Status:     doc.Status,
		Summary:    doc.Summary,
		UploadedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponses converts a slice of documents.
func ToResponses(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToResponse(doc))
	}
	return out
}
