package models

import "time"

// Role identifies what kind of account this is
type Role string

const (
	RoleLearner Role = "learner"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

// IsGrownup reports whether the role can author and assign lessons
func (r Role) IsGrownup() bool {
	return r == RoleTeacher || r == RoleParent
}

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleLearner || r == RoleTeacher || r == RoleParent
}

// Account represents a user account in the system
type Account struct {
	ID            int64
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
}

// Session represents an authenticated session
type Session struct {
	ID        string
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// RelationKind selects which relationship edge table a link lives in
type RelationKind string

const (
	RelationTeacher RelationKind = "teacher"
	RelationParent  RelationKind = "parent"
)

// RelationKindForRole maps a grown-up role to its edge kind
func RelationKindForRole(r Role) RelationKind {
	if r == RoleParent {
		return RelationParent
	}
	return RelationTeacher
}
