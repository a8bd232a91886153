package classes

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/internal/http/middleware"
	"github.com/fitdesk/fitdesk/pkg/domain"
	"github.com/fitdesk/fitdesk/pkg/gymctx"
	"github.com/fitdesk/fitdesk/pkg/repository"
)

type fakeGymLister struct {
	gyms []*domain.Gym
}

func (f *fakeGymLister) ListActiveByOwner(context.Context, uuid.UUID) ([]*domain.Gym, error) {
	return f.gyms, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, gym *domain.Gym) (*Handler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	resolver := gymctx.NewResolver(&fakeGymLister{gyms: []*domain.Gym{gym}}, gymctx.NewMemorySelectionStore(), testLogger())
	h := NewHandler(testLogger(), resolver, repository.NewClassesRepository(db), repository.NewMembershipsRepository(db))
	return h, mock, db
}

func staffRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/classes", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
	ctx = context.WithValue(ctx, middleware.SessionIDKey, uuid.New())
	return req.WithContext(ctx)
}

func classBody(trainerID string) string {
	req := AddRequest{
		Title:       "Morning HIIT",
		StartsAt:    time.Now().Add(24 * time.Hour),
		DurationMin: 45,
		Capacity:    20,
	}
	if trainerID != "" {
		req.TrainerUserID = trainerID
	}
	b, _ := json.Marshal(req)
	return string(b)
}

func activeGym() *domain.Gym {
	return &domain.Gym{
		ID:        uuid.New(),
		Name:      "Iron Temple",
		Status:    domain.GymStatusActive,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func TestAddClass_RejectsNonTrainerAssignment(t *testing.T) {
	gym := activeGym()
	handler, mock, db := newTestHandler(t, gym)
	defer db.Close()

	trainerID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT`).
		WithArgs(trainerID, gym.ID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "gym_id", "user_id", "role", "status", "created_at", "updated_at", "deleted_at",
		}).AddRow(uuid.New(), gym.ID, trainerID, "member", "active", now, now, nil))

	rec := httptest.NewRecorder()
	handler.Add(rec, staffRequest(classBody(trainerID.String())))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "trainer_user_id is not an active trainer at this gym" {
		t.Errorf("error = %q, want active-trainer message", resp["error"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAddClass_RejectsUnlinkedTrainer(t *testing.T) {
	gym := activeGym()
	handler, mock, db := newTestHandler(t, gym)
	defer db.Close()

	trainerID := uuid.New()
	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "gym_id", "user_id", "role", "status", "created_at", "updated_at", "deleted_at",
		}))

	rec := httptest.NewRecorder()
	handler.Add(rec, staffRequest(classBody(trainerID.String())))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "trainer_user_id is not linked to this gym" {
		t.Errorf("error = %q, want unlinked message", resp["error"])
	}
}

func TestAddClass_AcceptsActiveTrainer(t *testing.T) {
	gym := activeGym()
	handler, mock, db := newTestHandler(t, gym)
	defer db.Close()

	trainerID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT`).
		WithArgs(trainerID, gym.ID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "gym_id", "user_id", "role", "status", "created_at", "updated_at", "deleted_at",
		}).AddRow(uuid.New(), gym.ID, trainerID, "trainer", "active", now, now, nil))
	mock.ExpectExec(`INSERT INTO gym_classes`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := httptest.NewRecorder()
	handler.Add(rec, staffRequest(classBody(trainerID.String())))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAddClass_InactiveSubscription(t *testing.T) {
	gym := activeGym()
	gym.Status = domain.GymStatusCancelled
	handler, _, db := newTestHandler(t, gym)
	defer db.Close()

	rec := httptest.NewRecorder()
	handler.Add(rec, staffRequest(classBody("")))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "gym subscription is inactive" {
		t.Errorf("error = %q, want subscription message", resp["error"])
	}
}
