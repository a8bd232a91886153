package trainers

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

func testGym(maxTrainers int, status domain.GymStatus) *domain.Gym {
	return &domain.Gym{
		ID:          uuid.New(),
		Name:        "Iron Temple",
		Status:      status,
		MaxTrainers: maxTrainers,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
}

func newTestHandler(t *testing.T, gym *domain.Gym) (*Handler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	resolver := gymctx.NewResolver(&fakeGymLister{gyms: []*domain.Gym{gym}}, gymctx.NewMemorySelectionStore(), testLogger())
	h := NewHandler(testLogger(), resolver, repository.NewMembershipsRepository(db), repository.NewUsersRepository(db))
	return h, mock, db
}

func staffRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
	ctx = context.WithValue(ctx, middleware.SessionIDKey, uuid.New())
	return req.WithContext(ctx)
}

func TestAddTrainer_Validation(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedError string
	}{
		{"invalid json", `{invalid}`, "invalid request body"},
		{"missing user_id", `{}`, "invalid user_id"},
		{"malformed user_id", `{"user_id": "not-a-uuid"}`, "invalid user_id"},
	}

	handler := &Handler{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/trainers", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.Add(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var resp map[string]string
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp["error"] != tt.expectedError {
				t.Errorf("error = %q, want %q", resp["error"], tt.expectedError)
			}
		})
	}
}

func TestListTrainers_Anonymous(t *testing.T) {
	handler := &Handler{}

	req := httptest.NewRequest(http.MethodGet, "/v1/trainers", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAddTrainer_CapacityReached(t *testing.T) {
	gym := testGym(1, domain.GymStatusActive)
	handler, mock, db := newTestHandler(t, gym)
	defer db.Close()

	trainerID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT`).
		WithArgs(trainerID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "name", "role", "email_confirmed", "failed_login_attempts",
			"locked_until", "mfa_enabled", "created_at", "updated_at", "deleted_at",
		}).AddRow(trainerID, "coach@example.com", "Coach", "trainer", true, 0, nil, false, now, now, nil))
	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "gym_id", "user_id", "role", "status", "created_at", "updated_at", "deleted_at",
		}))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(gym.ID, domain.RoleTrainer).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	req := staffRequest(http.MethodPost, "/v1/trainers", `{"user_id": "`+trainerID.String()+`"}`)
	rec := httptest.NewRecorder()
	handler.Add(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "trainer capacity reached for this gym" {
		t.Errorf("error = %q, want capacity message", resp["error"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAddTrainer_InactiveSubscription(t *testing.T) {
	gym := testGym(10, domain.GymStatusExpired)
	handler, _, db := newTestHandler(t, gym)
	defer db.Close()

	req := staffRequest(http.MethodPost, "/v1/trainers", `{"user_id": "`+uuid.NewString()+`"}`)
	rec := httptest.NewRecorder()
	handler.Add(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["error"] != "gym subscription is inactive" {
		t.Errorf("error = %q, want subscription message", resp["error"])
	}
}

func TestAddTrainer_RejectsNonTrainerAccount(t *testing.T) {
	gym := testGym(10, domain.GymStatusTrial)
	handler, mock, db := newTestHandler(t, gym)
	defer db.Close()

	memberID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT`).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "name", "role", "email_confirmed", "failed_login_attempts",
			"locked_until", "mfa_enabled", "created_at", "updated_at", "deleted_at",
		}).AddRow(memberID, "member@example.com", nil, "member", true, 0, nil, false, now, now, nil))

	req := staffRequest(http.MethodPost, "/v1/trainers", `{"user_id": "`+memberID.String()+`"}`)
	rec := httptest.NewRecorder()
	handler.Add(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
