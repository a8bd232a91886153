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

func setupMembershipsMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *MembershipsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewMembershipsRepository(db)
}

func membershipRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "gym_id", "user_id", "role", "status",
		"created_at", "updated_at", "deleted_at",
	})
}

func TestGetByUserAndGym(t *testing.T) {
	db, mock, repo := setupMembershipsMock(t)
	defer db.Close()

	userID := uuid.New()
	gymID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID, gymID).
		WillReturnRows(membershipRows().
			AddRow(uuid.New(), gymID, userID, "trainer", "active", now, now, nil))

	membership, err := repo.GetByUserAndGym(context.Background(), userID, gymID)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrainer, membership.Role)
	assert.True(t, membership.IsActive())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUserAndGym_NotFound(t *testing.T) {
	db, mock, repo := setupMembershipsMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(membershipRows())

	membership, err := repo.GetByUserAndGym(context.Background(), uuid.New(), uuid.New())

	assert.Nil(t, membership)
	assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByGym_RoleFilter(t *testing.T) {
	db, mock, repo := setupMembershipsMock(t)
	defer db.Close()

	gymID := uuid.New()
	now := time.Now()
	role := domain.RoleTrainer

	mock.ExpectQuery(`SELECT`).
		WithArgs(gymID, "trainer").
		WillReturnRows(membershipRows().
			AddRow(uuid.New(), gymID, uuid.New(), "trainer", "active", now, now, nil).
			AddRow(uuid.New(), gymID, uuid.New(), "trainer", "suspended", now, now, nil))

	memberships, err := repo.ListByGym(context.Background(), gymID, &role)

	require.NoError(t, err)
	assert.Len(t, memberships, 2)
	assert.Equal(t, domain.MembershipStatusSuspended, memberships[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveByGymAndRole(t *testing.T) {
	db, mock, repo := setupMembershipsMock(t)
	defer db.Close()

	gymID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(gymID, domain.RoleTrainer).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountActiveByGymAndRole(context.Background(), gymID, domain.RoleTrainer)

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipUpdateStatus(t *testing.T) {
	db, mock, repo := setupMembershipsMock(t)
	defer db.Close()

	gymID := uuid.New()
	membershipID := uuid.New()
	mock.ExpectExec(`UPDATE memberships`).
		WithArgs(domain.MembershipStatusSuspended, membershipID, gymID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), gymID, membershipID, domain.MembershipStatusSuspended)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipUpdateStatus_WrongGym(t *testing.T) {
	db, mock, repo := setupMembershipsMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE memberships`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), uuid.New(), uuid.New(), domain.MembershipStatusActive)

	assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipSoftDelete(t *testing.T) {
	db, mock, repo := setupMembershipsMock(t)
	defer db.Close()

	gymID := uuid.New()
	membershipID := uuid.New()
	mock.ExpectExec(`UPDATE memberships`).
		WithArgs(membershipID, gymID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SoftDelete(context.Background(), gymID, membershipID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipSoftDelete_NotFound(t *testing.T) {
	db, mock, repo := setupMembershipsMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE memberships`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrMembershipNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
