package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked due to too many failed login attempts")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrInvalidToken       = errors.New("invalid token")
)

// Gym and membership errors
var (
	ErrGymNotFound        = errors.New("gym not found")
	ErrSlugAlreadyExists  = errors.New("gym slug already exists")
	ErrGymLimitReached    = errors.New("subscription tier does not allow another gym")
	ErrGymLoadFailed      = errors.New("could not load gyms")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrCapacityReached    = errors.New("gym member capacity reached")
)

// Validation errors
var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidRole       = errors.New("invalid role")
	ErrWeakPassword      = errors.New("password does not meet requirements")
	ErrEmailNotConfirmed = errors.New("email not confirmed")
)

// MFA errors
var (
	ErrMFANotEnabled       = errors.New("MFA is not enabled for this account")
	ErrMFAAlreadyEnabled   = errors.New("MFA is already enabled")
	ErrInvalidMFACode      = errors.New("invalid MFA code")
	ErrInvalidRecoveryCode = errors.New("invalid or already used recovery code")
)
