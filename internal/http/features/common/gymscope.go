// Package common holds helpers shared across feature handlers.
package common

import (
	"errors"
	"net/http"

	"github.com/fitdesk/fitdesk/internal/http/middleware"
	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/pkg/domain"
	"github.com/fitdesk/fitdesk/pkg/gymctx"
)

// ResolveGymContext resolves the gym context for the authenticated
// request. Requires ResolveSession to have populated the context.
func ResolveGymContext(r *http.Request, resolver *gymctx.Resolver) (*gymctx.Context, error) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	sessionID, _ := middleware.GetSessionID(r.Context())
	return resolver.Resolve(r.Context(), userID, sessionID)
}

// CurrentGym resolves the caller's current gym and writes the error
// response itself when there is none. Returns false when the handler
// should stop.
func CurrentGym(w http.ResponseWriter, r *http.Request, resolver *gymctx.Resolver) (*domain.Gym, bool) {
	gc, err := ResolveGymContext(r, resolver)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			httputil.Error(w, http.StatusUnauthorized, "unauthorized")
			return nil, false
		}
		if errors.Is(err, domain.ErrGymLoadFailed) {
			httputil.Error(w, http.StatusServiceUnavailable, "failed to load gyms")
			return nil, false
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to resolve gym context")
		return nil, false
	}
	if gc.CurrentGym == nil {
		httputil.Error(w, http.StatusConflict, "no gym in context")
		return nil, false
	}
	return gc.CurrentGym, true
}
