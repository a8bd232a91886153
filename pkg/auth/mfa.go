package auth

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/fitdesk/fitdesk/pkg/domain"
	"github.com/fitdesk/fitdesk/pkg/repository"
)

const (
	totpPeriod = 30
	totpWindow = 1 // Allow ±30 seconds clock drift

	recoveryCodeLength = 12
	recoveryCodeCount  = 8
	recoveryCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // No ambiguous chars
)

// MFAConfig contains configuration for the MFA service.
type MFAConfig struct {
	Issuer        string
	EncryptionKey []byte // 32 bytes for AES-256
}

// MFAService handles TOTP second factors for staff accounts.
type MFAService struct {
	config        MFAConfig
	db            *sql.DB
	secrets       *repository.MFASecretsRepository
	recoveryCodes *repository.MFARecoveryCodesRepository
	users         *repository.UsersRepository
}

// NewMFAService creates a new MFA service.
func NewMFAService(config MFAConfig, db *sql.DB, secrets *repository.MFASecretsRepository, recoveryCodes *repository.MFARecoveryCodesRepository, users *repository.UsersRepository) *MFAService {
	return &MFAService{
		config:        config,
		db:            db,
		secrets:       secrets,
		recoveryCodes: recoveryCodes,
		users:         users,
	}
}

// SetupTOTP generates a new TOTP secret and recovery codes for a user.
// The secret is stored encrypted; the plain secret and provisioning URI
// are returned once and never again.
func (s *MFAService) SetupTOTP(ctx context.Context, userID uuid.UUID) (*domain.MFASetup, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.MFAEnabled {
		return nil, domain.ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.config.Issuer,
		AccountName: user.Email,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return nil, fmt.Errorf("generate TOTP key: %w", err)
	}

	plainCodes := make([]string, recoveryCodeCount)
	hashedCodes := make([]*domain.MFARecoveryCode, recoveryCodeCount)
	for i := range plainCodes {
		code, err := generateRecoveryCode()
		if err != nil {
			return nil, err
		}
		plainCodes[i] = code
		hashedCodes[i] = &domain.MFARecoveryCode{
			ID:        uuid.New(),
			UserID:    userID,
			CodeHash:  hashRecoveryCode(code),
			CreatedAt: time.Now(),
		}
	}

	encryptedSecret, err := s.encryptSecret(key.Secret())
	if err != nil {
		return nil, fmt.Errorf("encrypt TOTP secret: %w", err)
	}

	// Replace any previous half-finished setup.
	if err := s.secrets.DeleteAllByUserID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.recoveryCodes.DeleteAllByUserID(ctx, userID); err != nil {
		return nil, err
	}

	secret := &domain.MFASecret{
		ID:              uuid.New(),
		UserID:          userID,
		Method:          domain.MFAMethodTOTP,
		SecretEncrypted: encryptedSecret,
		CreatedAt:       time.Now(),
	}
	if err := s.secrets.Create(ctx, secret); err != nil {
		return nil, err
	}
	if err := s.recoveryCodes.CreateBatch(ctx, hashedCodes); err != nil {
		return nil, err
	}

	return &domain.MFASetup{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		RecoveryCodes:   plainCodes,
	}, nil
}

// VerifyTOTPAndEnable verifies a TOTP code and enables MFA for the user.
func (s *MFAService) VerifyTOTPAndEnable(ctx context.Context, userID uuid.UUID, code string) error {
	if err := s.verifyTOTP(ctx, userID, code); err != nil {
		return err
	}
	return s.users.UpdateMFAEnabled(ctx, userID, true)
}

// VerifyCode checks a TOTP code or, failing that, a recovery code.
// Recovery codes are single-use.
func (s *MFAService) VerifyCode(ctx context.Context, userID uuid.UUID, code string) error {
	if err := s.verifyTOTP(ctx, userID, code); err == nil {
		return nil
	}

	codes, err := s.recoveryCodes.ListUnusedByUserID(ctx, userID)
	if err != nil {
		return err
	}
	hashed := hashRecoveryCode(code)
	for _, rc := range codes {
		if subtle.ConstantTimeCompare([]byte(rc.CodeHash), []byte(hashed)) == 1 {
			return s.recoveryCodes.MarkUsed(ctx, rc.ID)
		}
	}
	return domain.ErrInvalidMFACode
}

// Disable turns MFA off and removes secrets and recovery codes.
func (s *MFAService) Disable(ctx context.Context, userID uuid.UUID) error {
	if err := s.secrets.DeleteAllByUserID(ctx, userID); err != nil {
		return err
	}
	if err := s.recoveryCodes.DeleteAllByUserID(ctx, userID); err != nil {
		return err
	}
	return s.users.UpdateMFAEnabled(ctx, userID, false)
}

func (s *MFAService) verifyTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	secret, err := s.secrets.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	plain, err := s.decryptSecret(secret.SecretEncrypted)
	if err != nil {
		return fmt.Errorf("decrypt TOTP secret: %w", err)
	}

	valid, err := totp.ValidateCustom(code, plain, time.Now(), totp.ValidateOpts{
		Period: totpPeriod,
		Skew:   totpWindow,
		Digits: otp.DigitsSix,
	})
	if err != nil || !valid {
		return domain.ErrInvalidMFACode
	}

	_ = s.secrets.UpdateLastUsed(ctx, secret.ID)
	return nil
}

// encryptSecret encrypts a TOTP secret with AES-256-GCM.
func (s *MFAService) encryptSecret(secret string) (string, error) {
	block, err := aes.NewCipher(s.config.EncryptionKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(secret), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *MFAService) decryptSecret(encrypted string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(s.config.EncryptionKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func generateRecoveryCode() (string, error) {
	buf := make([]byte, recoveryCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, recoveryCodeLength)
	for i, b := range buf {
		code[i] = recoveryCodeChars[int(b)%len(recoveryCodeChars)]
	}
	return string(code), nil
}

func hashRecoveryCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
