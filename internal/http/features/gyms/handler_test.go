package gyms

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
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/internal/http/middleware"
	"github.com/fitdesk/fitdesk/pkg/auth"
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

func ownedGym(ownerID uuid.UUID) *domain.Gym {
	return &domain.Gym{
		ID:          uuid.New(),
		Name:        "Iron Temple",
		Slug:        "iron-temple",
		OwnerUserID: ownerID,
		Tier:        domain.GymTierSolo,
		Status:      domain.GymStatusActive,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func newTestHandler(t *testing.T, gym *domain.Gym) (*Handler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	resolver := gymctx.NewResolver(&fakeGymLister{gyms: []*domain.Gym{gym}}, gymctx.NewMemorySelectionStore(), testLogger())
	h := NewHandler(testLogger(), db, resolver, repository.NewGymsRepository(db), repository.NewMembershipsRepository(db))
	return h, mock, db
}

func requestAs(role domain.Role, method, target, body string) *http.Request {
	userID := uuid.New()
	sessionID := uuid.New()
	claims := &auth.AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID.String(),
			ID:      sessionID.String(),
		},
		Role: role,
	}

	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBufferString("{}")
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.SessionIDKey, sessionID)
	ctx = context.WithValue(ctx, middleware.ClaimsKey, claims)
	return req.WithContext(ctx)
}

func gymRow(gym *domain.Gym) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "owner_user_id", "tier", "status",
		"max_members", "max_trainers", "max_locations", "is_active",
		"created_at", "updated_at", "deleted_at",
	}).AddRow(gym.ID, gym.Name, gym.Slug, gym.OwnerUserID, gym.Tier, gym.Status,
		gym.MaxMembers, gym.MaxTrainers, gym.MaxLocations, gym.IsActive,
		gym.CreatedAt, gym.UpdatedAt, nil)
}

func TestUpdateGym_ForbiddenForStaff(t *testing.T) {
	gym := ownedGym(uuid.New())
	handler, _, db := newTestHandler(t, gym)
	defer db.Close()

	rec := httptest.NewRecorder()
	handler.Update(rec, requestAs(domain.RoleTrainer, http.MethodPatch, "/v1/gyms/current", `{"name": "New Name"}`))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestUpdateGym_SlugConflict(t *testing.T) {
	gym := ownedGym(uuid.New())
	handler, mock, db := newTestHandler(t, gym)
	defer db.Close()

	other := ownedGym(uuid.New())
	other.Slug = "flex-gym"
	mock.ExpectQuery(`SELECT`).
		WithArgs("flex-gym").
		WillReturnRows(gymRow(other))

	rec := httptest.NewRecorder()
	handler.Update(rec, requestAs(domain.RoleAdmin, http.MethodPatch, "/v1/gyms/current", `{"slug": "flex-gym"}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateGym_RenamesAndChangesSlug(t *testing.T) {
	gym := ownedGym(uuid.New())
	handler, mock, db := newTestHandler(t, gym)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("steel-temple").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "slug", "owner_user_id", "tier", "status",
			"max_members", "max_trainers", "max_locations", "is_active",
			"created_at", "updated_at", "deleted_at",
		}))
	mock.ExpectExec(`UPDATE gyms`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	handler.Update(rec, requestAs(domain.RoleAdmin, http.MethodPatch, "/v1/gyms/current",
		`{"name": "Steel Temple", "slug": "steel-temple"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp GymResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "Steel Temple" || resp.Slug != "steel-temple" {
		t.Errorf("response = %+v, want updated name and slug", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateGym_NothingToUpdate(t *testing.T) {
	gym := ownedGym(uuid.New())
	handler, _, db := newTestHandler(t, gym)
	defer db.Close()

	rec := httptest.NewRecorder()
	handler.Update(rec, requestAs(domain.RoleAdmin, http.MethodPatch, "/v1/gyms/current", `{}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDeactivateGym(t *testing.T) {
	gym := ownedGym(uuid.New())
	handler, mock, db := newTestHandler(t, gym)
	defer db.Close()

	mock.ExpectExec(`UPDATE gyms`).
		WithArgs(gym.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	handler.Deactivate(rec, requestAs(domain.RoleAdmin, http.MethodDelete, "/v1/gyms/current", ""))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeactivateGym_ForbiddenForStaff(t *testing.T) {
	gym := ownedGym(uuid.New())
	handler, _, db := newTestHandler(t, gym)
	defer db.Close()

	rec := httptest.NewRecorder()
	handler.Deactivate(rec, requestAs(domain.RoleTrainer, http.MethodDelete, "/v1/gyms/current", ""))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
