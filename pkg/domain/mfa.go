package domain

import (
	"time"

	"github.com/google/uuid"
)

// MFAMethod is the kind of second factor.
type MFAMethod string

const (
	MFAMethodTOTP MFAMethod = "totp"
)

// MFASecret stores an encrypted TOTP secret for a staff account.
type MFASecret struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Method          MFAMethod
	SecretEncrypted string
	CreatedAt       time.Time
	LastUsedAt      *time.Time
}

// MFARecoveryCode is a single-use hashed recovery code.
type MFARecoveryCode struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CodeHash  string
	UsedAt    *time.Time
	CreatedAt time.Time
}

// MFASetup is returned from TOTP setup so the user can add the secret
// to an authenticator app and store recovery codes.
type MFASetup struct {
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioning_uri"`
	RecoveryCodes   []string `json:"recovery_codes"`
}
