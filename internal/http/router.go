package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fitdesk/fitdesk/internal/config"
	"github.com/fitdesk/fitdesk/internal/http/features/accounts"
	"github.com/fitdesk/fitdesk/internal/http/features/classes"
	"github.com/fitdesk/fitdesk/internal/http/features/gyms"
	"github.com/fitdesk/fitdesk/internal/http/features/me"
	"github.com/fitdesk/fitdesk/internal/http/features/members"
	"github.com/fitdesk/fitdesk/internal/http/features/mfa"
	"github.com/fitdesk/fitdesk/internal/http/features/session"
	"github.com/fitdesk/fitdesk/internal/http/features/shell"
	"github.com/fitdesk/fitdesk/internal/http/features/trainers"
	"github.com/fitdesk/fitdesk/internal/http/middleware"
	"github.com/fitdesk/fitdesk/internal/httputil"
	"github.com/fitdesk/fitdesk/pkg/auth"
	"github.com/fitdesk/fitdesk/pkg/gymctx"
	"github.com/fitdesk/fitdesk/pkg/repository"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	DB              *sql.DB
	PasswordService *auth.PasswordService
	SessionService  *auth.SessionService
	MFAService      *auth.MFAService
	Resolver        *gymctx.Resolver
	UsersRepo       *repository.UsersRepository
	GymsRepo        *repository.GymsRepository
	MembershipsRepo *repository.MembershipsRepository
	MembersRepo     *repository.MembersRepository
	ClassesRepo     *repository.ClassesRepository
	RateLimitConfig config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Validation      config.ValidationConfig
	CookieSecure    bool
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	cookieConfig := httputil.DefaultCookieConfig(cfg.CookieSecure)

	// Apply global middleware. Session resolution runs on every request
	// so the access gate and handlers share one identity decision.
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))
	r.Use(middleware.ResolveSession(cfg.SessionService, cfg.Logger, cookieConfig))
	r.Use(middleware.AccessGate(cfg.Logger))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Create rate limiters for different endpoint types
	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	// Registration and login
	accountsHandler := accounts.NewHandler(cfg.Logger, cfg.PasswordService, cfg.SessionService, cfg.MFAService, cookieConfig)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/v1/auth/register", accountsHandler.Register)
		r.Post("/v1/auth/login", accountsHandler.Login)
	})

	// Session lifecycle
	sessionHandler := session.NewHandler(cfg.SessionService, cfg.Resolver, cookieConfig)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["refresh"])
		r.Post("/v1/auth/refresh", sessionHandler.Refresh)
	})
	r.Post("/v1/auth/logout", sessionHandler.Logout)
	r.With(middleware.RequireAuth()).Post("/v1/auth/logout/all", sessionHandler.LogoutAll)

	// User profile
	meHandler := me.NewHandler(cfg.Logger, cfg.UsersRepo, cfg.PasswordService, cfg.SessionService)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Use(rateLimiters["profile"])
		r.Get("/v1/me", meHandler.GetMe)
		r.Patch("/v1/me", meHandler.UpdateMe)
		r.Post("/v1/me/password", meHandler.ChangePassword)
	})

	// Gym context
	gymsHandler := gyms.NewHandler(cfg.Logger, cfg.DB, cfg.Resolver, cfg.GymsRepo, cfg.MembershipsRepo)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Get("/v1/gyms/context", gymsHandler.Context)
		r.Post("/v1/gyms/select", gymsHandler.Select)
		r.Post("/v1/gyms/refresh", gymsHandler.Refresh)
		r.Post("/v1/gyms", gymsHandler.Create)
		r.Patch("/v1/gyms/current", gymsHandler.Update)
		r.Delete("/v1/gyms/current", gymsHandler.Deactivate)
	})

	// Navigation shell
	shellHandler := shell.NewHandler(cfg.Logger, cfg.Resolver)
	r.With(middleware.RequireAuth()).Get("/v1/shell", shellHandler.Get)

	// Gym-scoped roster and schedule. Staff manage, members read.
	membersHandler := members.NewHandler(cfg.Logger, cfg.Resolver, cfg.MembersRepo)
	classesHandler := classes.NewHandler(cfg.Logger, cfg.Resolver, cfg.ClassesRepo, cfg.MembershipsRepo)
	trainersHandler := trainers.NewHandler(cfg.Logger, cfg.Resolver, cfg.MembershipsRepo, cfg.UsersRepo)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Get("/v1/classes", classesHandler.List)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Use(middleware.RequireStaff())
		r.Get("/v1/members", membersHandler.List)
		r.Post("/v1/members", membersHandler.Add)
		r.Delete("/v1/members/{id}", membersHandler.Remove)
		r.Post("/v1/classes", classesHandler.Add)
		r.Get("/v1/trainers", trainersHandler.List)
		r.Post("/v1/trainers", trainersHandler.Add)
		r.Patch("/v1/trainers/{id}", trainersHandler.SetStatus)
		r.Delete("/v1/trainers/{id}", trainersHandler.Remove)
	})

	// Staff MFA management (if configured)
	if cfg.MFAService != nil {
		mfaHandler := mfa.NewHandler(cfg.Logger, cfg.MFAService, cfg.PasswordService)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth())
			r.Use(middleware.RequireStaff())
			r.Use(rateLimiters["profile"])
			r.Get("/v1/me/mfa/status", mfaHandler.Status)
			r.Post("/v1/me/mfa/setup", mfaHandler.Setup)
			r.Post("/v1/me/mfa/enable", mfaHandler.Enable)
			r.Post("/v1/me/mfa/disable", mfaHandler.Disable)
		})
	}

	return r
}
