package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/pkg/domain"
)

// MembersRepository handles gym member roster persistence. All queries
// are scoped by gym_id; callers must pass the resolved current gym.
type MembersRepository struct {
	db *sql.DB
}

// NewMembersRepository creates a new members repository.
func NewMembersRepository(db *sql.DB) *MembersRepository {
	return &MembersRepository{db: db}
}

// Create creates a new member profile.
func (r *MembersRepository) Create(ctx context.Context, member *domain.MemberProfile) error {
	query := `
		INSERT INTO member_profiles (id, gym_id, user_id, full_name, email, phone, joined_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		member.ID, member.GymID, member.UserID, member.FullName,
		member.Email, member.Phone, member.JoinedAt,
		member.CreatedAt, member.UpdatedAt,
	)
	return err
}

// GetByID retrieves a member profile scoped to a gym.
func (r *MembersRepository) GetByID(ctx context.Context, gymID, id uuid.UUID) (*domain.MemberProfile, error) {
	query := `
		SELECT id, gym_id, user_id, full_name, email, phone, joined_at, created_at, updated_at, deleted_at
		FROM member_profiles
		WHERE id = $1 AND gym_id = $2 AND deleted_at IS NULL
	`
	member := &domain.MemberProfile{}
	err := r.db.QueryRowContext(ctx, query, id, gymID).Scan(
		&member.ID, &member.GymID, &member.UserID, &member.FullName,
		&member.Email, &member.Phone, &member.JoinedAt,
		&member.CreatedAt, &member.UpdatedAt, &member.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

// ListByGym retrieves all member profiles of a gym, newest first.
func (r *MembersRepository) ListByGym(ctx context.Context, gymID uuid.UUID) ([]*domain.MemberProfile, error) {
	query := `
		SELECT id, gym_id, user_id, full_name, email, phone, joined_at, created_at, updated_at, deleted_at
		FROM member_profiles
		WHERE gym_id = $1 AND deleted_at IS NULL
		ORDER BY joined_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, gymID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.MemberProfile
	for rows.Next() {
		member := &domain.MemberProfile{}
		err := rows.Scan(
			&member.ID, &member.GymID, &member.UserID, &member.FullName,
			&member.Email, &member.Phone, &member.JoinedAt,
			&member.CreatedAt, &member.UpdatedAt, &member.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// CountByGym counts member profiles of a gym, for capacity checks.
func (r *MembersRepository) CountByGym(ctx context.Context, gymID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM member_profiles WHERE gym_id = $1 AND deleted_at IS NULL`
	var count int
	err := r.db.QueryRowContext(ctx, query, gymID).Scan(&count)
	return count, err
}

// SoftDelete soft-deletes a member profile scoped to a gym.
func (r *MembersRepository) SoftDelete(ctx context.Context, gymID, id uuid.UUID) error {
	query := `
		UPDATE member_profiles
		SET deleted_at = NOW()
		WHERE id = $1 AND gym_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, gymID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}
