package users

import "time"

// User is an account holder. SubjectsCount is maintained transactionally by
// the subjects repository and never exceeds quota.MaxSubjectsPerUser.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	DisplayName   string    `json:"displayName"`
	SubjectsCount int       `json:"subjectsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
