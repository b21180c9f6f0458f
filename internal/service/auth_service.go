package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"calmhub/internal/models"
	"calmhub/internal/repository"
	"calmhub/internal/security"
	"calmhub/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrNoSuchAccount      = errors.New("no account found with that email")
)

// AuthService handles signup, login, and session lifecycle
type AuthService struct {
	accountRepo     *repository.AccountRepository
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(accountRepo *repository.AccountRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		accountRepo:     accountRepo,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new account of the requested role
func (s *AuthService) Register(name, email, password, passwordRepeat string, role models.Role) (*models.Account, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if password != passwordRepeat {
		return nil, ErrPasswordMismatch
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role: %s", role)
	}

	existing, err := s.accountRepo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.accountRepo.CreateAccount(strings.TrimSpace(name), strings.TrimSpace(email), passwordHash, role)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Login authenticates an account and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.Account, error) {
	account, err := s.accountRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, nil, ErrNoSuchAccount
	}

	if !security.CheckPassword(password, account.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(account.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, account, nil
}

// ValidateSession checks if a session is valid and returns the associated account
func (s *AuthService) ValidateSession(sessionID string) (*models.Account, error) {
	session, err := s.accountRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.accountRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	account, err := s.accountRepo.GetByID(session.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrSessionNotFound
	}

	return account, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.accountRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.accountRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// OAuthLogin authenticates or provisions a grown-up account from an OAuth
// provider identity. Learners register with a password, so only grown-up
// roles can be provisioned this way.
func (s *AuthService) OAuthLogin(provider, subject, email, name string, role models.Role) (*models.Session, *models.Account, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	if !role.IsGrownup() {
		return nil, nil, errors.New("oauth sign-in is for teacher and parent accounts")
	}

	account, err := s.accountRepo.GetByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth account: %w", err)
	}

	if account == nil {
		existing, err := s.accountRepo.GetByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing account: %w", err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.accountRepo.LinkOAuthProvider(existing.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			account = existing
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			// OAuth accounts never log in with this password; it just
			// satisfies the schema.
			randomHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate placeholder hash: %w", err)
			}
			created, err := s.accountRepo.CreateAccount(name, email, randomHash, role)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth account: %w", err)
			}
			if err := s.accountRepo.LinkOAuthProvider(created.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			account = created
		}
	}

	session, err := s.createSession(account.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, account, nil
}

func (s *AuthService) createSession(accountID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.accountRepo.CreateSession(sessionID, accountID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}
