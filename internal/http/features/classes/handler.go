package classes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/internal/http/features/common"
	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/pkg/domain"
	"github.com/fitdesk/fitdesk/pkg/gymctx"
	"github.com/fitdesk/fitdesk/pkg/repository"
)

// Handler handles gym-scoped class schedule endpoints.
type Handler struct {
	logger      *slog.Logger
	resolver    *gymctx.Resolver
	classes     *repository.ClassesRepository
	memberships *repository.MembershipsRepository
}

// NewHandler creates a new classes handler.
func NewHandler(logger *slog.Logger, resolver *gymctx.Resolver, classes *repository.ClassesRepository, memberships *repository.MembershipsRepository) *Handler {
	return &Handler{
		logger:      logger,
		resolver:    resolver,
		classes:     classes,
		memberships: memberships,
	}
}

// ClassResponse represents a scheduled class in API responses.
type ClassResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TrainerUserID string    `json:"trainer_user_id,omitempty"`
	StartsAt      time.Time `json:"starts_at"`
	DurationMin   int       `json:"duration_min"`
	Capacity      int       `json:"capacity"`
}

func toClassResponse(c *domain.GymClass) ClassResponse {
	resp := ClassResponse{
		ID:          c.ID.String(),
		Title:       c.Title,
		StartsAt:    c.StartsAt,
		DurationMin: c.DurationMin,
		Capacity:    c.Capacity,
	}
	if c.TrainerUserID != nil {
		resp.TrainerUserID = c.TrainerUserID.String()
	}
	return resp
}

// List returns the current gym's upcoming classes.
// GET /v1/classes
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}

	upcoming, err := h.classes.ListUpcomingByGym(r.Context(), gym.ID, time.Now())
	if err != nil {
		h.logger.Error("failed to list classes", "error", err, "gym_id", gym.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list classes")
		return
	}

	resp := make([]ClassResponse, 0, len(upcoming))
	for _, c := range upcoming {
		resp = append(resp, toClassResponse(c))
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"classes": resp})
}

// AddRequest represents a request to schedule a class.
type AddRequest struct {
	Title         string    `json:"title"`
	TrainerUserID string    `json:"trainer_user_id,omitempty"`
	StartsAt      time.Time `json:"starts_at"`
	DurationMin   int       `json:"duration_min"`
	Capacity      int       `json:"capacity"`
}

// Add schedules a class at the current gym.
// POST /v1/classes
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}
	if !gym.Subscribed() {
		httputil.Error(w, http.StatusConflict, "gym subscription is inactive")
		return
	}

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		httputil.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartsAt.IsZero() || req.StartsAt.Before(time.Now()) {
		httputil.Error(w, http.StatusBadRequest, "starts_at must be in the future")
		return
	}
	if req.DurationMin <= 0 {
		httputil.Error(w, http.StatusBadRequest, "duration_min must be positive")
		return
	}
	if req.Capacity <= 0 {
		httputil.Error(w, http.StatusBadRequest, "capacity must be positive")
		return
	}

	now := time.Now()
	class := &domain.GymClass{
		ID:          uuid.New(),
		GymID:       gym.ID,
		Title:       req.Title,
		StartsAt:    req.StartsAt,
		DurationMin: req.DurationMin,
		Capacity:    req.Capacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.TrainerUserID != "" {
		trainerID, err := uuid.Parse(req.TrainerUserID)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid trainer_user_id")
			return
		}
		membership, err := h.memberships.GetByUserAndGym(r.Context(), trainerID, gym.ID)
		if err != nil {
			if errors.Is(err, domain.ErrMembershipNotFound) {
				httputil.Error(w, http.StatusBadRequest, "trainer_user_id is not linked to this gym")
				return
			}
			h.logger.Error("failed to check trainer membership", "error", err, "gym_id", gym.ID)
			httputil.Error(w, http.StatusInternalServerError, "failed to schedule class")
			return
		}
		if membership.Role != domain.RoleTrainer || !membership.IsActive() {
			httputil.Error(w, http.StatusBadRequest, "trainer_user_id is not an active trainer at this gym")
			return
		}
		class.TrainerUserID = &trainerID
	}

	if err := h.classes.Create(r.Context(), class); err != nil {
		h.logger.Error("failed to schedule class", "error", err, "gym_id", gym.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to schedule class")
		return
	}

	httputil.JSON(w, http.StatusCreated, toClassResponse(class))
}
