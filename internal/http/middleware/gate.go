package middleware

import (
	"log/slog"
	"net/http"

	"github.com/fitdesk/fitdesk/internal/metrics"
	"github.com/fitdesk/fitdesk/pkg/routing"
)

const (
	loginPath = "/login"
	homePath  = "/"
)

// AccessGate creates middleware that classifies the request path and
// redirects before any handler runs. Anonymous visitors on protected
// paths go to the login page; signed-in users on auth-only paths go
// home. Redirects use 303 so the browser always re-requests with GET.
// It expects ResolveSession to have run earlier in the chain.
func AccessGate(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := routing.Classify(r.URL.Path)
			authenticated := IsAuthenticated(r.Context())

			decision := routing.Decide(authenticated, class)
			switch decision {
			case routing.RedirectLogin:
				logger.Debug("gate redirect", "path", r.URL.Path, "to", loginPath)
				metrics.RecordGateRedirect(decision.String())
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
			case routing.RedirectHome:
				logger.Debug("gate redirect", "path", r.URL.Path, "to", homePath)
				metrics.RecordGateRedirect(decision.String())
				http.Redirect(w, r, homePath, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
