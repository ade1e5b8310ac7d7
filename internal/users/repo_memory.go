package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

type resetEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	users  map[string]User   // id -> user
	emails map[string]string // email -> id
	resets map[string]resetEntry
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:  make(map[string]User),
		emails: make(map[string]string),
		resets: make(map[string]resetEntry),
	}
}

// Create stores a new user.
func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, taken := r.emails[key]; taken {
		return ErrEmailTaken
	}
	r.users[user.ID] = user
	r.emails[key] = user.ID
	return nil
}

// GetByID returns a user by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// GetByEmail returns a user by email.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.users[id], nil
}

// UpdateEmail changes a user's email address.
func (r *MemoryRepo) UpdateEmail(ctx context.Context, userID, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	key := strings.ToLower(email)
	if owner, taken := r.emails[key]; taken && owner != userID {
		return ErrEmailTaken
	}
	delete(r.emails, strings.ToLower(user.Email))
	user.Email = email
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	r.emails[key] = userID
	return nil
}

// UpdatePassword replaces a user's password hash.
func (r *MemoryRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}

// CreatePasswordReset records a reset token.
func (r *MemoryRepo) CreatePasswordReset(ctx context.Context, token, userID string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets[token] = resetEntry{userID: userID, expiresAt: expiresAt}
	return nil
}

// ConsumePasswordReset removes a valid token and returns the owning user ID.
func (r *MemoryRepo) ConsumePasswordReset(ctx context.Context, token string, now time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.resets[token]
	if !ok || now.After(entry.expiresAt) {
		return "", ErrResetTokenInvalid
	}
	delete(r.resets, token)
	return entry.userID, nil
}

// LastResetToken returns any outstanding reset token for the user. Test hook.
func (r *MemoryRepo) LastResetToken(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for token, entry := range r.resets {
		if entry.userID == userID {
			return token
		}
	}
	return ""
}

// AdjustSubjectsCount mutates the cached counter; used by the subjects memory repo.
func (r *MemoryRepo) AdjustSubjectsCount(userID string, delta int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		user = User{ID: userID}
	}
	user.SubjectsCount += delta
	if user.SubjectsCount < 0 {
		user.SubjectsCount = 0
	}
	r.users[userID] = user
	return user.SubjectsCount
}

var _ Repo = (*MemoryRepo)(nil)
