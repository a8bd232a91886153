package me

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fitdesk/fitdesk/internal/http/middleware"
	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/pkg/auth"
	"github.com/fitdesk/fitdesk/pkg/domain"
	"github.com/fitdesk/fitdesk/pkg/repository"
)

// Handler handles user profile endpoints.
type Handler struct {
	logger          *slog.Logger
	users           *repository.UsersRepository
	passwordService *auth.PasswordService
	sessionService  *auth.SessionService
}

// NewHandler creates a new profile handler.
func NewHandler(logger *slog.Logger, users *repository.UsersRepository, passwordService *auth.PasswordService, sessionService *auth.SessionService) *Handler {
	return &Handler{
		logger:          logger,
		users:           users,
		passwordService: passwordService,
		sessionService:  sessionService,
	}
}

// UserResponse represents the current user's profile.
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	Role           string    `json:"role"`
	EmailConfirmed bool      `json:"email_confirmed"`
	MFAEnabled     bool      `json:"mfa_enabled"`
	CreatedAt      time.Time `json:"created_at"`
}

func toUserResponse(user *domain.User) UserResponse {
	name := ""
	if user.Name != nil {
		name = *user.Name
	}
	return UserResponse{
		ID:             user.ID.String(),
		Email:          user.Email,
		Name:           name,
		Role:           string(user.Role),
		EmailConfirmed: user.EmailConfirmed,
		MFAEnabled:     user.MFAEnabled,
		CreatedAt:      user.CreatedAt,
	}
}

// GetMe returns the current user's profile.
// GET /v1/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	httputil.JSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateMeRequest represents a profile update request.
type UpdateMeRequest struct {
	Name *string `json:"name,omitempty"`
}

// UpdateMe updates the current user's profile.
// PATCH /v1/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	if req.Name != nil {
		name := auth.SanitizeName(*req.Name)
		user.Name = &name
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		h.logger.Error("failed to update user", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	httputil.JSON(w, http.StatusOK, toUserResponse(user))
}

// ChangePasswordRequest represents a password change request.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword changes the current user's password and revokes all
// other sessions.
// POST /v1/me/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		httputil.Error(w, http.StatusBadRequest, "current_password and new_password are required")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	if _, err := h.passwordService.Authenticate(r.Context(), user.Email, req.CurrentPassword); err != nil {
		httputil.Error(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	if err := h.passwordService.ChangePassword(r.Context(), userID, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrWeakPassword) {
			httputil.Error(w, http.StatusBadRequest, "password does not meet requirements")
			return
		}
		h.logger.Error("failed to change password", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to change password")
		return
	}

	// Other devices must sign in again with the new password.
	if err := h.sessionService.RevokeAllSessions(r.Context(), userID); err != nil {
		h.logger.Error("failed to revoke sessions after password change", "error", err, "user_id", userID)
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}
