package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/pkg/domain"
)

// ClassesRepository handles gym class schedule persistence.
type ClassesRepository struct {
	db *sql.DB
}

// NewClassesRepository creates a new classes repository.
func NewClassesRepository(db *sql.DB) *ClassesRepository {
	return &ClassesRepository{db: db}
}

// Create creates a new class.
func (r *ClassesRepository) Create(ctx context.Context, class *domain.GymClass) error {
	query := `
		INSERT INTO gym_classes (id, gym_id, trainer_user_id, title, starts_at, duration_min, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		class.ID, class.GymID, class.TrainerUserID, class.Title,
		class.StartsAt, class.DurationMin, class.Capacity,
		class.CreatedAt, class.UpdatedAt,
	)
	return err
}

// GetByID retrieves a class scoped to a gym.
func (r *ClassesRepository) GetByID(ctx context.Context, gymID, id uuid.UUID) (*domain.GymClass, error) {
	query := `
		SELECT id, gym_id, trainer_user_id, title, starts_at, duration_min, capacity, created_at, updated_at, deleted_at
		FROM gym_classes
		WHERE id = $1 AND gym_id = $2 AND deleted_at IS NULL
	`
	class := &domain.GymClass{}
	err := r.db.QueryRowContext(ctx, query, id, gymID).Scan(
		&class.ID, &class.GymID, &class.TrainerUserID, &class.Title,
		&class.StartsAt, &class.DurationMin, &class.Capacity,
		&class.CreatedAt, &class.UpdatedAt, &class.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return class, nil
}

// ListUpcomingByGym retrieves classes of a gym starting after the given
// time, soonest first.
func (r *ClassesRepository) ListUpcomingByGym(ctx context.Context, gymID uuid.UUID, after time.Time) ([]*domain.GymClass, error) {
	query := `
		SELECT id, gym_id, trainer_user_id, title, starts_at, duration_min, capacity, created_at, updated_at, deleted_at
		FROM gym_classes
		WHERE gym_id = $1 AND starts_at > $2 AND deleted_at IS NULL
		ORDER BY starts_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, gymID, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []*domain.GymClass
	for rows.Next() {
		class := &domain.GymClass{}
		err := rows.Scan(
			&class.ID, &class.GymID, &class.TrainerUserID, &class.Title,
			&class.StartsAt, &class.DurationMin, &class.Capacity,
			&class.CreatedAt, &class.UpdatedAt, &class.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// SoftDelete soft-deletes a class scoped to a gym.
func (r *ClassesRepository) SoftDelete(ctx context.Context, gymID, id uuid.UUID) error {
	query := `
		UPDATE gym_classes
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
		return domain.ErrClassNotFound
	}
	return nil
}
