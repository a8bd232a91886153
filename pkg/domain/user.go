package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the identity-level role claim. Admins own and run gyms,
// trainers teach classes, members attend them.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleMember  Role = "member"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleMember:
		return true
	}
	return false
}

// IsStaff reports whether the role may manage gym data.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTrainer
}

// User represents the account.
type User struct {
	ID                  uuid.UUID
	Email               string
	Name                *string
	Role                Role
	EmailConfirmed      bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	MFAEnabled          bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// IsLocked returns true if the account is currently locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// UserPassword stores password credentials separately from user profile.
type UserPassword struct {
	UserID            uuid.UUID
	PasswordHash      string
	PasswordUpdatedAt time.Time
}
