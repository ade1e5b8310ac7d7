package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"studyvault-backend/internal/shared/telemetry"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = time.Hour
)

// Service contains account business logic.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// SignUp creates an account. Fails on duplicate email or weak password.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return User{}, ErrInvalidInput
	}
	if len(password) < minPasswordLength {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    time.Now().UTC(),
	}
	user.UpdatedAt = user.CreatedAt

	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// SignIn verifies credentials and returns the account.
func (s *Service) SignIn(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns a user by ID.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID)
}

// RequestPasswordReset issues a reset token for the account, if it exists.
// Unknown emails are not reported to the caller.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidInput
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := s.Repo.CreatePasswordReset(ctx, token, user.ID, expiresAt); err != nil {
		return err
	}

	// Delivery is a mail concern outside this service; the token is surfaced
	// through logs for operators until a mailer is wired in.
	telemetry.Info("password_reset.issued", map[string]any{
		"user_id":    user.ID,
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrResetTokenInvalid
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	userID, err := s.Repo.ConsumePasswordReset(ctx, token, time.Now().UTC())
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, userID, string(hash))
}

// ChangeEmail updates the account email after re-verifying the password.
func (s *Service) ChangeEmail(ctx context.Context, userID, newEmail, password string) error {
	newEmail = normalizeEmail(newEmail)
	if !validEmail(newEmail) {
		return ErrInvalidInput
	}

	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return s.Repo.UpdateEmail(ctx, userID, newEmail)
}

// ChangePassword replaces the account password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, userID, string(hash))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}
