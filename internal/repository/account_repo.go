package repository

import (
	"database/sql"
	"fmt"
	"time"

	"calmhub/internal/database"
	"calmhub/internal/models"
)

// AccountRepository handles database operations for accounts and sessions
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateAccount creates a new account with the given role
func (r *AccountRepository) CreateAccount(name, email, passwordHash string, role models.Role) (*models.Account, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO accounts (name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, name, email, passwordHash, string(role), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &models.Account{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}, nil
}

// GetByEmail retrieves an account by email, or nil when none exists
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	query := `
		SELECT id, name, email, password_hash, role, oauth_provider, oauth_subject, created_at
		FROM accounts WHERE email = ?
	`
	return r.scanAccount(r.db.QueryRow(query, email))
}

// GetByID retrieves an account by ID, or nil when none exists
func (r *AccountRepository) GetByID(id int64) (*models.Account, error) {
	query := `
		SELECT id, name, email, password_hash, role, oauth_provider, oauth_subject, created_at
		FROM accounts WHERE id = ?
	`
	return r.scanAccount(r.db.QueryRow(query, id))
}

// GetByOAuth retrieves an account by OAuth provider and subject
func (r *AccountRepository) GetByOAuth(provider, subject string) (*models.Account, error) {
	query := `
		SELECT id, name, email, password_hash, role, oauth_provider, oauth_subject, created_at
		FROM accounts WHERE oauth_provider = ? AND oauth_subject = ?
	`
	return r.scanAccount(r.db.QueryRow(query, provider, subject))
}

// LinkOAuthProvider attaches OAuth identity details to an existing account
func (r *AccountRepository) LinkOAuthProvider(accountID int64, provider, subject string) error {
	query := "UPDATE accounts SET oauth_provider = ?, oauth_subject = ? WHERE id = ?"
	if _, err := r.db.Exec(query, provider, subject, accountID); err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return nil
}

func (r *AccountRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var role string
	var oauthProvider, oauthSubject sql.NullString

	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&role,
		&oauthProvider,
		&oauthSubject,
		&account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.Role = models.Role(role)
	account.OAuthProvider = oauthProvider.String
	account.OAuthSubject = oauthSubject.String
	return account, nil
}

// CreateSession stores a new login session
func (r *AccountRepository) CreateSession(sessionID string, accountID int64, expiresAt time.Time) (*models.Session, error) {
	now := time.Now().UTC()
	query := "INSERT INTO sessions (id, account_id, expires_at, created_at) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, accountID, expiresAt, now); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// GetSession retrieves a session by ID, or nil when none exists
func (r *AccountRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, account_id, expires_at, created_at FROM sessions WHERE id = ?"
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.AccountID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session
func (r *AccountRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry
func (r *AccountRepository) DeleteExpiredSessions() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
