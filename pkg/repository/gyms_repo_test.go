package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/fitdesk/pkg/domain"
)

func setupGymsMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *GymsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewGymsRepository(db)
}

func gymRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "owner_user_id", "tier", "status",
		"max_members", "max_trainers", "max_locations", "is_active",
		"created_at", "updated_at", "deleted_at",
	})
}

func TestListActiveByOwner(t *testing.T) {
	db, mock, repo := setupGymsMock(t)
	defer db.Close()

	ownerID := uuid.New()
	newestID := uuid.New()
	olderID := uuid.New()
	now := time.Now()

	rows := gymRows().
		AddRow(newestID, "Iron Temple", "iron-temple", ownerID, "multi", "active",
			1000, 50, 10, true, now, now, nil).
		AddRow(olderID, "Flex Gym", "flex-gym", ownerID, "multi", "active",
			1000, 50, 10, true, now.Add(-time.Hour), now.Add(-time.Hour), nil)

	mock.ExpectQuery(`SELECT`).
		WithArgs(ownerID).
		WillReturnRows(rows)

	gyms, err := repo.ListActiveByOwner(context.Background(), ownerID)

	require.NoError(t, err)
	assert.Len(t, gyms, 2)
	assert.Equal(t, newestID, gyms[0].ID)
	assert.Equal(t, "iron-temple", gyms[0].Slug)
	assert.Equal(t, olderID, gyms[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveByOwner_Empty(t *testing.T) {
	db, mock, repo := setupGymsMock(t)
	defer db.Close()

	ownerID := uuid.New()
	mock.ExpectQuery(`SELECT`).
		WithArgs(ownerID).
		WillReturnRows(gymRows())

	gyms, err := repo.ListActiveByOwner(context.Background(), ownerID)

	require.NoError(t, err)
	assert.Len(t, gyms, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, repo := setupGymsMock(t)
	defer db.Close()

	gymID := uuid.New()
	mock.ExpectQuery(`SELECT`).
		WithArgs(gymID).
		WillReturnRows(gymRows())

	gym, err := repo.GetByID(context.Background(), gymID)

	assert.Nil(t, gym)
	assert.ErrorIs(t, err, domain.ErrGymNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveByOwner(t *testing.T) {
	db, mock, repo := setupGymsMock(t)
	defer db.Close()

	ownerID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountActiveByOwner(context.Background(), ownerID)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate(t *testing.T) {
	db, mock, repo := setupGymsMock(t)
	defer db.Close()

	gymID := uuid.New()
	mock.ExpectExec(`UPDATE gyms`).
		WithArgs(gymID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Deactivate(context.Background(), gymID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate_NotFound(t *testing.T) {
	db, mock, repo := setupGymsMock(t)
	defer db.Close()

	gymID := uuid.New()
	mock.ExpectExec(`UPDATE gyms`).
		WithArgs(gymID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), gymID)

	assert.ErrorIs(t, err, domain.ErrGymNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	db, mock, repo := setupGymsMock(t)
	defer db.Close()

	now := time.Now()
	gym := &domain.Gym{
		ID:           uuid.New(),
		Name:         "Iron Temple",
		Slug:         "iron-temple",
		OwnerUserID:  uuid.New(),
		Tier:         domain.GymTierSolo,
		Status:       domain.GymStatusTrial,
		MaxMembers:   200,
		MaxTrainers:  5,
		MaxLocations: 1,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(`INSERT INTO gyms`).
		WithArgs(gym.ID, gym.Name, gym.Slug, gym.OwnerUserID, gym.Tier, gym.Status,
			gym.MaxMembers, gym.MaxTrainers, gym.MaxLocations, gym.IsActive,
			gym.CreatedAt, gym.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), gym)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
