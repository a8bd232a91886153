package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/pkg/domain"
)

const gymColumns = `id, name, slug, owner_user_id, tier, status,
	       max_members, max_trainers, max_locations, is_active,
	       created_at, updated_at, deleted_at`

// GymsRepository handles gym (tenant) data persistence.
type GymsRepository struct {
	db *sql.DB
}

// NewGymsRepository creates a new gyms repository.
func NewGymsRepository(db *sql.DB) *GymsRepository {
	return &GymsRepository{db: db}
}

func scanGym(row interface{ Scan(...any) error }) (*domain.Gym, error) {
	gym := &domain.Gym{}
	err := row.Scan(
		&gym.ID, &gym.Name, &gym.Slug, &gym.OwnerUserID, &gym.Tier, &gym.Status,
		&gym.MaxMembers, &gym.MaxTrainers, &gym.MaxLocations, &gym.IsActive,
		&gym.CreatedAt, &gym.UpdatedAt, &gym.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}
	return gym, nil
}

// Create creates a new gym.
func (r *GymsRepository) Create(ctx context.Context, gym *domain.Gym) error {
	return r.CreateTx(ctx, r.db, gym)
}

// CreateTx creates a new gym within a transaction.
func (r *GymsRepository) CreateTx(ctx context.Context, q Querier, gym *domain.Gym) error {
	query := `
		INSERT INTO gyms (id, name, slug, owner_user_id, tier, status,
		                  max_members, max_trainers, max_locations, is_active,
		                  created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := q.ExecContext(ctx, query,
		gym.ID, gym.Name, gym.Slug, gym.OwnerUserID, gym.Tier, gym.Status,
		gym.MaxMembers, gym.MaxTrainers, gym.MaxLocations, gym.IsActive,
		gym.CreatedAt, gym.UpdatedAt,
	)
	return err
}

// GetByID retrieves a gym by ID.
func (r *GymsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Gym, error) {
	query := `
		SELECT ` + gymColumns + `
		FROM gyms
		WHERE id = $1 AND deleted_at IS NULL
	`
	return scanGym(r.db.QueryRowContext(ctx, query, id))
}

// GetBySlug retrieves a gym by slug.
func (r *GymsRepository) GetBySlug(ctx context.Context, slug string) (*domain.Gym, error) {
	query := `
		SELECT ` + gymColumns + `
		FROM gyms
		WHERE slug = $1 AND deleted_at IS NULL
	`
	return scanGym(r.db.QueryRowContext(ctx, query, slug))
}

// ExistsBySlug checks if a gym exists with the given slug.
func (r *GymsRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM gyms WHERE slug = $1 AND deleted_at IS NULL)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists)
	return exists, err
}

// ListActiveByOwner retrieves all active gyms owned by a user, most
// recently created first.
func (r *GymsRepository) ListActiveByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*domain.Gym, error) {
	query := `
		SELECT ` + gymColumns + `
		FROM gyms
		WHERE owner_user_id = $1 AND is_active = TRUE AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gyms []*domain.Gym
	for rows.Next() {
		gym, err := scanGym(rows)
		if err != nil {
			return nil, err
		}
		gyms = append(gyms, gym)
	}
	return gyms, rows.Err()
}

// CountActiveByOwner counts active gyms owned by a user.
func (r *GymsRepository) CountActiveByOwner(ctx context.Context, ownerUserID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM gyms
		WHERE owner_user_id = $1 AND is_active = TRUE AND deleted_at IS NULL
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, ownerUserID).Scan(&count)
	return count, err
}

// Update updates a gym's mutable fields.
func (r *GymsRepository) Update(ctx context.Context, gym *domain.Gym) error {
	query := `
		UPDATE gyms
		SET name = $2, slug = $3, tier = $4, status = $5,
		    max_members = $6, max_trainers = $7, max_locations = $8,
		    is_active = $9, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		gym.ID, gym.Name, gym.Slug, gym.Tier, gym.Status,
		gym.MaxMembers, gym.MaxTrainers, gym.MaxLocations, gym.IsActive,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGymNotFound
	}
	return nil
}

// Deactivate clears the active flag on a gym. Deactivated gyms drop out
// of the resolver's visible set.
func (r *GymsRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE gyms
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
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
		return domain.ErrGymNotFound
	}
	return nil
}
