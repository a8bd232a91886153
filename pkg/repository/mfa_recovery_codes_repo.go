package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/pkg/domain"
)

// MFARecoveryCodesRepository handles MFA recovery code persistence.
type MFARecoveryCodesRepository struct {
	db *sql.DB
}

// NewMFARecoveryCodesRepository creates a new recovery codes repository.
func NewMFARecoveryCodesRepository(db *sql.DB) *MFARecoveryCodesRepository {
	return &MFARecoveryCodesRepository{db: db}
}

// CreateBatch inserts recovery codes in a single transaction.
func (r *MFARecoveryCodesRepository) CreateBatch(ctx context.Context, codes []*domain.MFARecoveryCode) error {
	if len(codes) == 0 {
		return nil
	}

	return Tx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO mfa_recovery_codes (id, user_id, code_hash, used_at, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, code := range codes {
			if _, err := stmt.ExecContext(ctx, code.ID, code.UserID, code.CodeHash, code.UsedAt, code.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListUnusedByUserID retrieves unused recovery codes for a user.
func (r *MFARecoveryCodesRepository) ListUnusedByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.MFARecoveryCode, error) {
	query := `
		SELECT id, user_id, code_hash, used_at, created_at
		FROM mfa_recovery_codes
		WHERE user_id = $1 AND used_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*domain.MFARecoveryCode
	for rows.Next() {
		code := &domain.MFARecoveryCode{}
		err := rows.Scan(&code.ID, &code.UserID, &code.CodeHash, &code.UsedAt, &code.CreatedAt)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// MarkUsed marks a recovery code as consumed.
func (r *MFARecoveryCodesRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE mfa_recovery_codes
		SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInvalidRecoveryCode
	}
	return nil
}

// DeleteAllByUserID removes all recovery codes for a user.
func (r *MFARecoveryCodesRepository) DeleteAllByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM mfa_recovery_codes WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
