package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/internal/metrics"
	"github.com/fitdesk/fitdesk/pkg/auth"
)

type contextKey string

const (
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// ClaimsKey is the context key for the token claims.
	ClaimsKey contextKey = "claims"
	// SessionIDKey is the context key for the session ID (jti).
	SessionIDKey contextKey = "session_id"
)

// ResolveSession creates middleware that resolves the caller's identity
// without ever rejecting the request. It checks the Authorization header
// first, then the access token cookie. When the access token is expired
// or missing but a refresh token cookie is present, it refreshes the
// session transparently and rotates the access cookie, so a browser user
// whose access token lapsed mid-session stays signed in. When nothing
// works the request continues anonymously; downstream gates decide what
// anonymous callers may reach.
func ResolveSession(sessionService *auth.SessionService, logger *slog.Logger, cookieConfig httputil.CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			// Authorization header first (mobile clients and API calls)
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenString = parts[1]
				}
			}

			// Fall back to cookie (web clients)
			if tokenString == "" {
				if token, ok := httputil.GetAccessTokenFromCookie(r); ok {
					tokenString = token
				}
			}

			if tokenString != "" {
				if claims, err := sessionService.ValidateAccessToken(tokenString); err == nil {
					if ctx, ok := contextWithClaims(r.Context(), claims); ok {
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
				}
			}

			// Silent refresh for web clients with a live refresh token.
			if refreshToken, ok := httputil.GetRefreshTokenFromCookie(r); ok && refreshToken != "" {
				tokens, err := sessionService.RefreshSession(r.Context(), refreshToken)
				if err == nil {
					claims, err := sessionService.ValidateAccessToken(tokens.AccessToken)
					if err == nil {
						if ctx, ok := contextWithClaims(r.Context(), claims); ok {
							metrics.SilentRefreshTotal.Inc()
							httputil.SetAuthCookies(
								w,
								tokens.AccessToken,
								tokens.RefreshToken,
								sessionService.AccessTokenTTL(),
								sessionService.RefreshTokenTTL(),
								cookieConfig,
							)
							next.ServeHTTP(w, r.WithContext(ctx))
							return
						}
					}
				} else {
					logger.Debug("silent refresh failed", "path", r.URL.Path, "error", err)
				}
			}

			// Anonymous.
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth creates middleware that rejects anonymous requests. It
// expects ResolveSession to have run earlier in the chain.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUserID(r.Context()); !ok {
				httputil.Error(w, http.StatusUnauthorized, "missing authorization")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff creates middleware that rejects callers whose role is not
// a staff role. It expects RequireAuth to have run earlier in the chain.
func RequireStaff() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok || !claims.Role.IsStaff() {
				httputil.Error(w, http.StatusForbidden, "staff role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func contextWithClaims(ctx context.Context, claims *auth.AccessTokenClaims) (context.Context, bool) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, false
	}
	sessionID, err := claims.SessionID()
	if err != nil {
		return ctx, false
	}

	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, SessionIDKey, sessionID)
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return ctx, true
}

// GetUserID extracts the user ID from the request context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetClaims extracts the token claims from the request context.
func GetClaims(ctx context.Context) (*auth.AccessTokenClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.AccessTokenClaims)
	return claims, ok
}

// GetSessionID extracts the session ID from the request context.
func GetSessionID(ctx context.Context) (uuid.UUID, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(uuid.UUID)
	return sessionID, ok
}

// IsAuthenticated reports whether the request carries a resolved identity.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := GetUserID(ctx)
	return ok
}
