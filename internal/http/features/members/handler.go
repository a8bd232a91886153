package members

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

// Handler handles gym-scoped member roster endpoints. Every operation
// runs against the session's current gym; there is no cross-gym access.
type Handler struct {
	logger   *slog.Logger
	resolver *gymctx.Resolver
	members  *repository.MembersRepository
}

// NewHandler creates a new members handler.
func NewHandler(logger *slog.Logger, resolver *gymctx.Resolver, members *repository.MembersRepository) *Handler {
	return &Handler{
		logger:   logger,
		resolver: resolver,
		members:  members,
	}
}

// MemberResponse represents a member profile in API responses.
type MemberResponse struct {
	ID       string    `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

func toMemberResponse(m *domain.MemberProfile) MemberResponse {
	resp := MemberResponse{
		ID:       m.ID.String(),
		FullName: m.FullName,
		JoinedAt: m.JoinedAt,
	}
	if m.Email != nil {
		resp.Email = *m.Email
	}
	if m.Phone != nil {
		resp.Phone = *m.Phone
	}
	return resp
}

// List returns the current gym's member roster.
// GET /v1/members
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}

	profiles, err := h.members.ListByGym(r.Context(), gym.ID)
	if err != nil {
		h.logger.Error("failed to list members", "error", err, "gym_id", gym.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	resp := make([]MemberResponse, 0, len(profiles))
	for _, m := range profiles {
		resp = append(resp, toMemberResponse(m))
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"members": resp})
}

// AddRequest represents a request to add a member to the roster.
type AddRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Add adds a member to the current gym's roster, enforcing the gym's
// member capacity limit.
// POST /v1/members
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

	if req.FullName == "" {
		httputil.Error(w, http.StatusBadRequest, "full_name is required")
		return
	}

	if gym.MaxMembers > 0 {
		count, err := h.members.CountByGym(r.Context(), gym.ID)
		if err != nil {
			httputil.Error(w, http.StatusInternalServerError, "failed to add member")
			return
		}
		if count >= gym.MaxMembers {
			httputil.Error(w, http.StatusConflict, "member capacity reached for this gym")
			return
		}
	}

	now := time.Now()
	member := &domain.MemberProfile{
		ID:        uuid.New(),
		GymID:     gym.ID,
		FullName:  req.FullName,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Email != "" {
		member.Email = &req.Email
	}
	if req.Phone != "" {
		member.Phone = &req.Phone
	}

	if err := h.members.Create(r.Context(), member); err != nil {
		h.logger.Error("failed to add member", "error", err, "gym_id", gym.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to add member")
		return
	}

	httputil.JSON(w, http.StatusCreated, toMemberResponse(member))
}

// Remove soft-deletes a member from the current gym's roster.
// DELETE /v1/members/{id}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	gym, ok := common.CurrentGym(w, r, h.resolver)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	if err := h.members.SoftDelete(r.Context(), gym.ID, memberID); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			httputil.Error(w, http.StatusNotFound, "member not found")
			return
		}
		h.logger.Error("failed to remove member", "error", err, "gym_id", gym.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
