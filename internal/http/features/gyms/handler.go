package gyms

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/internal/http/features/common"
	"github.com/fitdesk/fitdesk/internal/http/middleware"
	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/internal/metrics"
	"github.com/fitdesk/fitdesk/pkg/domain"
	"github.com/fitdesk/fitdesk/pkg/gymctx"
	"github.com/fitdesk/fitdesk/pkg/repository"
)

// Handler handles gym (tenant) endpoints.
type Handler struct {
	logger      *slog.Logger
	db          *sql.DB
	resolver    *gymctx.Resolver
	gyms        *repository.GymsRepository
	memberships *repository.MembershipsRepository
}

// NewHandler creates a new gyms handler.
func NewHandler(
	logger *slog.Logger,
	db *sql.DB,
	resolver *gymctx.Resolver,
	gyms *repository.GymsRepository,
	memberships *repository.MembershipsRepository,
) *Handler {
	return &Handler{
		logger:      logger,
		db:          db,
		resolver:    resolver,
		gyms:        gyms,
		memberships: memberships,
	}
}

// GymResponse represents a gym in API responses.
type GymResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Tier      string    `json:"tier"`
	Status    string    `json:"status"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toGymResponse(gym *domain.Gym) GymResponse {
	return GymResponse{
		ID:        gym.ID.String(),
		Name:      gym.Name,
		Slug:      gym.Slug,
		Tier:      string(gym.Tier),
		Status:    string(gym.Status),
		IsActive:  gym.IsActive,
		CreatedAt: gym.CreatedAt,
	}
}

// ContextResponse represents the resolved gym context.
type ContextResponse struct {
	CurrentGym      *GymResponse  `json:"current_gym"`
	Gyms            []GymResponse `json:"gyms"`
	HasMultipleGyms bool          `json:"has_multiple_gyms"`
}

func toContextResponse(gc *gymctx.Context) ContextResponse {
	resp := ContextResponse{
		Gyms:            make([]GymResponse, 0, len(gc.Gyms)),
		HasMultipleGyms: gc.HasMultipleGyms(),
	}
	for _, gym := range gc.Gyms {
		resp.Gyms = append(resp.Gyms, toGymResponse(gym))
	}
	if gc.CurrentGym != nil {
		current := toGymResponse(gc.CurrentGym)
		resp.CurrentGym = &current
	}
	return resp
}

// Context returns the caller's resolved gym context.
// GET /v1/gyms/context
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	gc, err := common.ResolveGymContext(r, h.resolver)
	if err != nil {
		if errors.Is(err, domain.ErrGymLoadFailed) {
			metrics.RecordGymResolution("error")
			httputil.Error(w, http.StatusServiceUnavailable, "failed to load gyms")
			return
		}
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if len(gc.Gyms) == 0 {
		metrics.RecordGymResolution("empty")
	} else {
		metrics.RecordGymResolution("ok")
	}
	httputil.JSON(w, http.StatusOK, toContextResponse(gc))
}

// Refresh re-resolves the gym context from storage, picking up gyms
// created or deactivated since the last resolution. Resolution always
// reads through, so this is the same lookup as Context under an intent
// the client can call after a mutation.
// POST /v1/gyms/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.Context(w, r)
}

// SelectRequest represents a gym switch request.
type SelectRequest struct {
	GymID string `json:"gym_id"`
}

// Select switches the caller's current gym for this session. Selecting
// a gym outside the visible set leaves the context unchanged.
// POST /v1/gyms/select
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gymID, err := uuid.Parse(req.GymID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid gym_id")
		return
	}

	gc, err := common.ResolveGymContext(r, h.resolver)
	if err != nil {
		if errors.Is(err, domain.ErrGymLoadFailed) {
			httputil.Error(w, http.StatusServiceUnavailable, "failed to load gyms")
			return
		}
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID, _ := middleware.GetSessionID(r.Context())
	if h.resolver.Select(r.Context(), gc, sessionID, gymID) {
		metrics.GymSelectionsTotal.Inc()
	}

	httputil.JSON(w, http.StatusOK, toContextResponse(gc))
}

// CreateRequest represents a gym creation request.
type CreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
	Tier string `json:"tier,omitempty"`
}

// Create creates a new gym owned by the caller and selects it for the
// current session. Solo-tier owners are limited to one active gym.
// POST /v1/gyms
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.Role != domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, "only gym owners can create gyms")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	tier := domain.GymTier(req.Tier)
	if req.Tier == "" {
		tier = domain.GymTierSolo
	}
	if tier != domain.GymTierSolo && tier != domain.GymTierMulti {
		httputil.Error(w, http.StatusBadRequest, "invalid tier")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if !ValidSlug(slug) {
		httputil.Error(w, http.StatusBadRequest, "invalid slug: must be 3-60 characters, lowercase alphanumeric and hyphens")
		return
	}

	if tier == domain.GymTierSolo {
		count, err := h.gyms.CountActiveByOwner(r.Context(), userID)
		if err != nil {
			httputil.Error(w, http.StatusInternalServerError, "failed to create gym")
			return
		}
		if count > 0 {
			httputil.Error(w, http.StatusConflict, "solo tier allows a single active gym")
			return
		}
	}

	exists, err := h.gyms.ExistsBySlug(r.Context(), slug)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to create gym")
		return
	}
	if exists {
		httputil.Error(w, http.StatusConflict, "slug already taken")
		return
	}

	now := time.Now()
	gym := &domain.Gym{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        slug,
		OwnerUserID: userID,
		Tier:        tier,
		Status:      domain.GymStatusTrial,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	gym.MaxMembers, gym.MaxTrainers, gym.MaxLocations = tierLimits(tier)

	membership := &domain.Membership{
		ID:        uuid.New(),
		GymID:     gym.ID,
		UserID:    userID,
		Role:      domain.RoleAdmin,
		Status:    domain.MembershipStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Gym and owner membership are created atomically.
	err = repository.Tx(r.Context(), h.db, func(tx *sql.Tx) error {
		if err := h.gyms.CreateTx(r.Context(), tx, gym); err != nil {
			return err
		}
		return h.memberships.CreateTx(r.Context(), tx, membership)
	})
	if err != nil {
		h.logger.Error("failed to create gym", "error", err, "owner_user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create gym")
		return
	}

	// The new gym becomes the session's current gym right away.
	if sessionID, ok := middleware.GetSessionID(r.Context()); ok {
		gc := &gymctx.Context{Gyms: []*domain.Gym{gym}}
		h.resolver.Select(r.Context(), gc, sessionID, gym.ID)
	}

	h.logger.Info("gym created", "gym_id", gym.ID, "owner_user_id", userID, "tier", tier)
	httputil.JSON(w, http.StatusCreated, toGymResponse(gym))
}

// UpdateRequest represents a gym settings change.
type UpdateRequest struct {
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// Update renames the session's current gym or changes its slug.
// Owner-only.
// PATCH /v1/gyms/current
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.Role != domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, "only gym owners can change gym settings")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" && req.Slug == "" {
		httputil.Error(w, http.StatusBadRequest, "nothing to update")
		return
	}

	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}

	if req.Slug != "" && req.Slug != gym.Slug {
		if !ValidSlug(req.Slug) {
			httputil.Error(w, http.StatusBadRequest, "invalid slug: must be 3-60 characters, lowercase alphanumeric and hyphens")
			return
		}
		existing, err := h.gyms.GetBySlug(r.Context(), req.Slug)
		if err != nil && !errors.Is(err, domain.ErrGymNotFound) {
			httputil.Error(w, http.StatusInternalServerError, "failed to update gym")
			return
		}
		if existing != nil && existing.ID != gym.ID {
			httputil.Error(w, http.StatusConflict, "slug already taken")
			return
		}
		gym.Slug = req.Slug
	}
	if req.Name != "" {
		gym.Name = req.Name
	}
	gym.UpdatedAt = time.Now()

	if err := h.gyms.Update(r.Context(), gym); err != nil {
		h.logger.Error("failed to update gym", "error", err, "gym_id", gym.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to update gym")
		return
	}

	httputil.JSON(w, http.StatusOK, toGymResponse(gym))
}

// Deactivate retires the session's current gym. The gym drops out of
// the visible set; the next resolution falls back to the newest
// remaining gym. Owner-only.
// DELETE /v1/gyms/current
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || claims.Role != domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, "only gym owners can deactivate gyms")
		return
	}

	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}

	if err := h.gyms.Deactivate(r.Context(), gym.ID); err != nil {
		if errors.Is(err, domain.ErrGymNotFound) {
			httputil.Error(w, http.StatusNotFound, "gym not found")
			return
		}
		h.logger.Error("failed to deactivate gym", "error", err, "gym_id", gym.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to deactivate gym")
		return
	}

	// Drop the stale selection now instead of waiting for self-healing.
	if sessionID, ok := middleware.GetSessionID(r.Context()); ok {
		h.resolver.ClearSelection(r.Context(), sessionID)
	}

	h.logger.Info("gym deactivated", "gym_id", gym.ID)
	w.WriteHeader(http.StatusNoContent)
}

func tierLimits(tier domain.GymTier) (members, trainers, locations int) {
	if tier == domain.GymTierMulti {
		return 1000, 50, 10
	}
	return 200, 5, 1
}
