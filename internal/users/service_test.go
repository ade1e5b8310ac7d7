package users

import (
	"context"
	"errors"
	"testing"
)

func TestSignUpAndSignIn(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "  Alex@Example.com ", "correct-horse", "Alex")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.Email != "alex@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "correct-horse" {
		t.Fatal("password stored in plaintext")
	}

	got, err := svc.SignIn(ctx, "alex@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.SignUp(context.Background(), "alex@example.com", "short", "Alex"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alex@example.com", "correct-horse", "Alex"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := svc.SignUp(ctx, "ALEX@example.com", "another-pass", "Alex Again"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alex@example.com", "correct-horse", "Alex"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := svc.SignIn(ctx, "alex@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alex@example.com", "correct-horse", "Alex")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "alex@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	// Unknown emails are silently accepted.
	if err := svc.RequestPasswordReset(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset unknown email: %v", err)
	}

	token := repo.LastResetToken(user.ID)
	if token == "" {
		t.Fatal("expected a reset token to be recorded")
	}

	if err := svc.ResetPassword(ctx, token, "brand-new-pass"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := svc.SignIn(ctx, "alex@example.com", "brand-new-pass"); err != nil {
		t.Fatalf("SignIn after reset: %v", err)
	}
	if _, err := svc.SignIn(ctx, "alex@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}

	// Tokens are single use.
	if err := svc.ResetPassword(ctx, token, "yet-another-pass"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid on reuse, got %v", err)
	}
}

func TestChangeEmailRequiresPassword(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alex@example.com", "correct-horse", "Alex")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if err := svc.ChangeEmail(ctx, user.ID, "new@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangeEmail(ctx, user.ID, "new@example.com", "correct-horse"); err != nil {
		t.Fatalf("ChangeEmail: %v", err)
	}
	if _, err := svc.SignIn(ctx, "new@example.com", "correct-horse"); err != nil {
		t.Fatalf("SignIn with new email: %v", err)
	}
}
