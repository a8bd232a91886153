package trainers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/internal/http/features/common"
	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/pkg/domain"
	"github.com/fitdesk/fitdesk/pkg/gymctx"
	"github.com/fitdesk/fitdesk/pkg/repository"
)

// Handler handles the current gym's trainer roster. Trainers are user
// accounts linked to the gym through memberships, unlike roster members
// who are plain profiles.
type Handler struct {
	logger      *slog.Logger
	resolver    *gymctx.Resolver
	memberships *repository.MembershipsRepository
	users       *repository.UsersRepository
}

// NewHandler creates a new trainers handler.
func NewHandler(logger *slog.Logger, resolver *gymctx.Resolver, memberships *repository.MembershipsRepository, users *repository.UsersRepository) *Handler {
	return &Handler{
		logger:      logger,
		resolver:    resolver,
		memberships: memberships,
		users:       users,
	}
}

// TrainerResponse represents a trainer membership in API responses.
type TrainerResponse struct {
	MembershipID string    `json:"membership_id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	JoinedAt     time.Time `json:"joined_at"`
}

// List returns the current gym's trainer roster.
// GET /v1/trainers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}

	role := domain.RoleTrainer
	memberships, err := h.memberships.ListByGym(r.Context(), gym.ID, &role)
	if err != nil {
		h.logger.Error("failed to list trainers", "error", err, "gym_id", gym.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list trainers")
		return
	}

	resp := make([]TrainerResponse, 0, len(memberships))
	for _, m := range memberships {
		user, err := h.users.GetByID(r.Context(), m.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				// Deleted account; the membership row outlives it.
				continue
			}
			h.logger.Error("failed to load trainer account", "error", err, "user_id", m.UserID)
			httputil.Error(w, http.StatusInternalServerError, "failed to list trainers")
			return
		}
		tr := TrainerResponse{
			MembershipID: m.ID.String(),
			UserID:       m.UserID.String(),
			Email:        user.Email,
			Status:       string(m.Status),
			JoinedAt:     m.CreatedAt,
		}
		if user.Name != nil {
			tr.Name = *user.Name
		}
		resp = append(resp, tr)
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"trainers": resp})
}

// AddRequest represents a request to link a trainer account to the gym.
type AddRequest struct {
	UserID string `json:"user_id"`
}

// Add links an existing trainer account to the current gym, enforcing
// the gym's trainer capacity limit.
// POST /v1/trainers
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}
	if !gym.Subscribed() {
		httputil.Error(w, http.StatusConflict, "gym subscription is inactive")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to add trainer")
		return
	}
	if user.Role != domain.RoleTrainer {
		httputil.Error(w, http.StatusBadRequest, "user is not a trainer account")
		return
	}

	if _, err := h.memberships.GetByUserAndGym(r.Context(), userID, gym.ID); err == nil {
		httputil.Error(w, http.StatusConflict, "user is already linked to this gym")
		return
	} else if !errors.Is(err, domain.ErrMembershipNotFound) {
		httputil.Error(w, http.StatusInternalServerError, "failed to add trainer")
		return
	}

	if gym.MaxTrainers > 0 {
		count, err := h.memberships.CountActiveByGymAndRole(r.Context(), gym.ID, domain.RoleTrainer)
		if err != nil {
			httputil.Error(w, http.StatusInternalServerError, "failed to add trainer")
			return
		}
		if count >= gym.MaxTrainers {
			httputil.Error(w, http.StatusConflict, "trainer capacity reached for this gym")
			return
		}
	}

	now := time.Now()
	membership := &domain.Membership{
		ID:        uuid.New(),
		GymID:     gym.ID,
		UserID:    userID,
		Role:      domain.RoleTrainer,
		Status:    domain.MembershipStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.memberships.Create(r.Context(), membership); err != nil {
		h.logger.Error("failed to add trainer", "error", err, "gym_id", gym.ID, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to add trainer")
		return
	}

	resp := TrainerResponse{
		MembershipID: membership.ID.String(),
		UserID:       userID.String(),
		Email:        user.Email,
		Status:       string(membership.Status),
		JoinedAt:     membership.CreatedAt,
	}
	if user.Name != nil {
		resp.Name = *user.Name
	}
	httputil.JSON(w, http.StatusCreated, resp)
}

// SetStatusRequest represents a trainer status change.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus suspends or reinstates a trainer membership.
// PATCH /v1/trainers/{id}
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	membershipID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid membership id")
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := domain.MembershipStatus(req.Status)
	if status != domain.MembershipStatusActive && status != domain.MembershipStatusSuspended {
		httputil.Error(w, http.StatusBadRequest, "status must be active or suspended")
		return
	}

	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}

	if err := h.memberships.UpdateStatus(r.Context(), gym.ID, membershipID, status); err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			httputil.Error(w, http.StatusNotFound, "trainer not found")
			return
		}
		h.logger.Error("failed to update trainer status", "error", err, "membership_id", membershipID)
		httputil.Error(w, http.StatusInternalServerError, "failed to update trainer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove unlinks a trainer from the current gym.
// DELETE /v1/trainers/{id}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	membershipID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid membership id")
		return
	}

	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}

	if err := h.memberships.SoftDelete(r.Context(), gym.ID, membershipID); err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			httputil.Error(w, http.StatusNotFound, "trainer not found")
			return
		}
		h.logger.Error("failed to remove trainer", "error", err, "membership_id", membershipID)
		httputil.Error(w, http.StatusInternalServerError, "failed to remove trainer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
