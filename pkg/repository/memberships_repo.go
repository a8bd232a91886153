package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/pkg/domain"
)

// MembershipsRepository handles trainer/member gym linking records.
type MembershipsRepository struct {
	db *sql.DB
}

// NewMembershipsRepository creates a new memberships repository.
func NewMembershipsRepository(db *sql.DB) *MembershipsRepository {
	return &MembershipsRepository{db: db}
}

// Create creates a new membership.
func (r *MembershipsRepository) Create(ctx context.Context, membership *domain.Membership) error {
	return r.CreateTx(ctx, r.db, membership)
}

// CreateTx creates a new membership within a transaction.
func (r *MembershipsRepository) CreateTx(ctx context.Context, q Querier, membership *domain.Membership) error {
	query := `
		INSERT INTO memberships (id, gym_id, user_id, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.ExecContext(ctx, query,
		membership.ID, membership.GymID, membership.UserID,
		membership.Role, membership.Status,
		membership.CreatedAt, membership.UpdatedAt,
	)
	return err
}

// GetByUserAndGym retrieves a membership for a user in a gym.
func (r *MembershipsRepository) GetByUserAndGym(ctx context.Context, userID, gymID uuid.UUID) (*domain.Membership, error) {
	query := `
		SELECT id, gym_id, user_id, role, status, created_at, updated_at, deleted_at
		FROM memberships
		WHERE user_id = $1 AND gym_id = $2 AND deleted_at IS NULL
	`
	var membership domain.Membership
	err := r.db.QueryRowContext(ctx, query, userID, gymID).Scan(
		&membership.ID, &membership.GymID, &membership.UserID,
		&membership.Role, &membership.Status,
		&membership.CreatedAt, &membership.UpdatedAt, &membership.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// ListByGym retrieves all memberships of a gym, optionally filtered by role.
func (r *MembershipsRepository) ListByGym(ctx context.Context, gymID uuid.UUID, role *domain.Role) ([]*domain.Membership, error) {
	query := `
		SELECT id, gym_id, user_id, role, status, created_at, updated_at, deleted_at
		FROM memberships
		WHERE gym_id = $1 AND ($2::text IS NULL OR role = $2) AND deleted_at IS NULL
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, gymID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*domain.Membership
	for rows.Next() {
		var membership domain.Membership
		err := rows.Scan(
			&membership.ID, &membership.GymID, &membership.UserID,
			&membership.Role, &membership.Status,
			&membership.CreatedAt, &membership.UpdatedAt, &membership.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, &membership)
	}
	return memberships, rows.Err()
}

// CountActiveByGymAndRole counts active memberships of a given role in a gym.
func (r *MembershipsRepository) CountActiveByGymAndRole(ctx context.Context, gymID uuid.UUID, role domain.Role) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM memberships
		WHERE gym_id = $1 AND role = $2 AND status = 'active' AND deleted_at IS NULL
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, gymID, role).Scan(&count)
	return count, err
}

// UpdateStatus updates the status of a membership. Scoped to the gym so
// a membership id from another tenant never matches.
func (r *MembershipsRepository) UpdateStatus(ctx context.Context, gymID, id uuid.UUID, status domain.MembershipStatus) error {
	query := `
		UPDATE memberships
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND gym_id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, status, id, gymID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

// SoftDelete soft deletes a membership within a gym.
func (r *MembershipsRepository) SoftDelete(ctx context.Context, gymID, id uuid.UUID) error {
	query := `
		UPDATE memberships
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
		return domain.ErrMembershipNotFound
	}
	return nil
}
