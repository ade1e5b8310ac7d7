package subjects

import "time"

// Subject is a user-created grouping of documents. DocumentsCount is
// maintained transactionally by the documents repository.
type Subject struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	Name           string    `json:"name"`
	DocumentsCount int       `json:"documentsCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
