package mfa

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/internal/http/middleware"
	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/pkg/auth"
	"github.com/fitdesk/fitdesk/pkg/domain"
)

// Handler handles staff MFA management endpoints.
type Handler struct {
	logger          *slog.Logger
	mfaService      *auth.MFAService
	passwordService *auth.PasswordService
}

// NewHandler creates a new MFA handler.
func NewHandler(logger *slog.Logger, mfaService *auth.MFAService, passwordService *auth.PasswordService) *Handler {
	return &Handler{
		logger:          logger,
		mfaService:      mfaService,
		passwordService: passwordService,
	}
}

// Status returns whether MFA is enabled for the current user.
// GET /v1/me/mfa/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.passwordService.GetUserByID(r.Context(), userID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]bool{"mfa_enabled": user.MFAEnabled})
}

// SetupRequest represents the request body for MFA setup.
type SetupRequest struct {
	Password string `json:"password"`
}

// SetupResponse represents the response body for MFA setup. The secret
// and recovery codes are shown once.
type SetupResponse struct {
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioning_uri"`
	RecoveryCodes   []string `json:"recovery_codes"`
}

// Setup generates a TOTP secret and recovery codes.
// POST /v1/me/mfa/setup
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "password is required")
		return
	}

	if !h.verifyPassword(w, r, userID, req.Password) {
		return
	}

	setup, err := h.mfaService.SetupTOTP(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMFAAlreadyEnabled) {
			httputil.Error(w, http.StatusConflict, "MFA is already enabled")
			return
		}
		h.logger.Error("failed to setup TOTP", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to setup MFA")
		return
	}

	httputil.JSON(w, http.StatusOK, SetupResponse{
		Secret:          setup.Secret,
		ProvisioningURI: setup.ProvisioningURI,
		RecoveryCodes:   setup.RecoveryCodes,
	})
}

// EnableRequest represents the request body for enabling MFA.
type EnableRequest struct {
	Code string `json:"code"`
}

// Enable verifies a TOTP code and turns MFA on.
// POST /v1/me/mfa/enable
func (h *Handler) Enable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req EnableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Code == "" {
		httputil.Error(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := h.mfaService.VerifyTOTPAndEnable(ctx, userID, req.Code); err != nil {
		if errors.Is(err, domain.ErrInvalidMFACode) {
			httputil.Error(w, http.StatusBadRequest, "invalid MFA code")
			return
		}
		if errors.Is(err, domain.ErrMFANotEnabled) {
			httputil.Error(w, http.StatusBadRequest, "MFA setup not initiated. Please call /setup first")
			return
		}
		h.logger.Error("failed to enable MFA", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to enable MFA")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "MFA enabled"})
}

// DisableRequest represents the request body for disabling MFA.
type DisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Disable verifies the password and a TOTP or recovery code, then turns
// MFA off and removes secrets and recovery codes.
// POST /v1/me/mfa/disable
func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req DisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Password == "" || req.Code == "" {
		httputil.Error(w, http.StatusBadRequest, "password and code are required")
		return
	}

	if !h.verifyPassword(w, r, userID, req.Password) {
		return
	}

	if err := h.mfaService.VerifyCode(ctx, userID, req.Code); err != nil {
		httputil.Error(w, http.StatusUnauthorized, "invalid MFA code")
		return
	}

	if err := h.mfaService.Disable(ctx, userID); err != nil {
		h.logger.Error("failed to disable MFA", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to disable MFA")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "MFA disabled"})
}

func (h *Handler) verifyPassword(w http.ResponseWriter, r *http.Request, userID uuid.UUID, password string) bool {
	user, err := h.passwordService.GetUserByID(r.Context(), userID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to get user")
		return false
	}

	if _, err := h.passwordService.Authenticate(r.Context(), user.Email, password); err != nil {
		httputil.Error(w, http.StatusUnauthorized, "invalid password")
		return false
	}
	return true
}
