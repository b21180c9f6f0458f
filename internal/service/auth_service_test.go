package service

import (
	"testing"

	"calmhub/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestEnv(t)

	account, err := env.auth.Register("Ms Finch", "finch@example.com", "password123", "password123", models.RoleTeacher)
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if account.Role != models.RoleTeacher {
		t.Errorf("expected role %q, got %q", models.RoleTeacher, account.Role)
	}

	session, loggedIn, err := env.auth.Login("finch@example.com", "password123")
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	if loggedIn.ID != account.ID {
		t.Errorf("expected account %d, got %d", account.ID, loggedIn.ID)
	}

	validated, err := env.auth.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("failed to validate session: %v", err)
	}
	if validated.ID != account.ID {
		t.Errorf("expected account %d from session, got %d", account.ID, validated.ID)
	}

	if err := env.auth.Logout(session.ID); err != nil {
		t.Fatalf("failed to logout: %v", err)
	}
	if _, err := env.auth.ValidateSession(session.ID); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestEnv(t)

	if _, err := env.auth.Register("Sam", "sam@example.com", "password123", "different123", models.RoleLearner); err != ErrPasswordMismatch {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}

	if _, err := env.auth.Register("Sam", "sam@example.com", "password123", "password123", models.RoleLearner); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if _, err := env.auth.Register("Other Sam", "sam@example.com", "password123", "password123", models.RoleLearner); err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := env.auth.Register("Sam", "bad-email", "password123", "password123", models.RoleLearner); err == nil {
		t.Error("expected error for invalid email")
	}
	if _, err := env.auth.Register("Sam", "sam2@example.com", "short", "short", models.RoleLearner); err == nil {
		t.Error("expected error for short password")
	}
	if _, err := env.auth.Register("Sam", "sam3@example.com", "password123", "password123", models.Role("wizard")); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestLoginFailures(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestEnv(t)
	env.registerAccount(t, "Sam", "sam@example.com", models.RoleLearner)

	if _, _, err := env.auth.Login("nobody@example.com", "password123"); err != ErrNoSuchAccount {
		t.Errorf("expected ErrNoSuchAccount, got %v", err)
	}
	if _, _, err := env.auth.Login("sam@example.com", "wrongpassword"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestOAuthLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := setupTestEnv(t)

	session, account, err := env.auth.OAuthLogin("google", "sub-123", "dana@example.com", "Dana", models.RoleParent)
	if err != nil {
		t.Fatalf("failed oauth login: %v", err)
	}
	if account.Role != models.RoleParent {
		t.Errorf("expected role %q, got %q", models.RoleParent, account.Role)
	}
	if _, err := env.auth.ValidateSession(session.ID); err != nil {
		t.Errorf("expected valid session, got %v", err)
	}

	// A second sign-in with the same subject reuses the account.
	_, again, err := env.auth.OAuthLogin("google", "sub-123", "dana@example.com", "Dana", models.RoleParent)
	if err != nil {
		t.Fatalf("repeat oauth login failed: %v", err)
	}
	if again.ID != account.ID {
		t.Errorf("expected same account %d, got %d", account.ID, again.ID)
	}

	// Learners cannot be provisioned over OAuth.
	if _, _, err := env.auth.OAuthLogin("google", "sub-456", "kid@example.com", "Kit", models.RoleLearner); err == nil {
		t.Error("expected error for learner oauth login")
	}
}
