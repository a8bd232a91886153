package shell

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fitdesk/fitdesk/internal/http/features/common"
	"github.com/fitdesk/fitdesk/internal/http/middleware"
	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/pkg/domain"
	"github.com/fitdesk/fitdesk/pkg/gymctx"
	"github.com/fitdesk/fitdesk/pkg/layout"
)

// Handler serves the navigation shell for the signed-in user: which
// chrome variant to render, its nav items, and whether a gym switcher
// belongs in it.
type Handler struct {
	logger   *slog.Logger
	resolver *gymctx.Resolver
}

// NewHandler creates a new shell handler.
func NewHandler(logger *slog.Logger, resolver *gymctx.Resolver) *Handler {
	return &Handler{
		logger:   logger,
		resolver: resolver,
	}
}

// CurrentGymResponse is the shell's gym switcher summary.
type CurrentGymResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Response represents the resolved shell.
type Response struct {
	Shell           string              `json:"shell"`
	Role            string              `json:"role"`
	Nav             []layout.NavItem    `json:"nav"`
	CurrentGym      *CurrentGymResponse `json:"current_gym"`
	HasMultipleGyms bool                `json:"has_multiple_gyms"`
}

// Get returns the navigation shell for the current user.
// GET /v1/shell
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	selected := layout.SelectShell(claims.Role)
	resp := Response{
		Shell: string(selected),
		Role:  string(claims.Role),
		Nav:   layout.Nav(selected, claims.Role),
	}

	gc, err := common.ResolveGymContext(r, h.resolver)
	if err != nil {
		if errors.Is(err, domain.ErrGymLoadFailed) {
			// The shell still renders; the switcher shows an error state.
			httputil.Error(w, http.StatusServiceUnavailable, "failed to load gyms")
			return
		}
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	resp.HasMultipleGyms = gc.HasMultipleGyms()
	if gc.CurrentGym != nil {
		resp.CurrentGym = &CurrentGymResponse{
			ID:   gc.CurrentGym.ID.String(),
			Name: gc.CurrentGym.Name,
		}
	}

	httputil.JSON(w, http.StatusOK, resp)
}
