package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fitdesk/fitdesk/internal/config"
	httpserver "github.com/fitdesk/fitdesk/internal/http"
	"github.com/fitdesk/fitdesk/pkg/auth"
	"github.com/fitdesk/fitdesk/pkg/gymctx"
	"github.com/fitdesk/fitdesk/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Connect to Redis for the per-session gym selection store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	logger.Info("connected to redis")

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	credsRepo := repository.NewCredentialsRepository(db)
	sessionsRepo := repository.NewSessionsRepository(db)
	gymsRepo := repository.NewGymsRepository(db)
	membershipsRepo := repository.NewMembershipsRepository(db)
	membersRepo := repository.NewMembersRepository(db)
	classesRepo := repository.NewClassesRepository(db)
	mfaSecretsRepo := repository.NewMFASecretsRepository(db)
	mfaRecoveryCodesRepo := repository.NewMFARecoveryCodesRepository(db)

	// Initialize services
	passwordPolicy := &auth.PasswordPolicy{
		MinLength:        cfg.PasswordPolicy.MinLength,
		RequireUppercase: cfg.PasswordPolicy.RequireUppercase,
		RequireLowercase: cfg.PasswordPolicy.RequireLowercase,
		RequireNumber:    cfg.PasswordPolicy.RequireNumber,
		RequireSpecial:   cfg.PasswordPolicy.RequireSpecial,
	}
	passwordService := auth.NewPasswordService(db, usersRepo, credsRepo, passwordPolicy)
	sessionService := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		JWTSecret:       []byte(cfg.JWTSecret),
		Issuer:          cfg.JWTIssuer,
	}, sessionsRepo, usersRepo)

	// Gym selections live as long as the refresh token that owns them.
	selectionStore := gymctx.NewRedisSelectionStore(redisClient, cfg.RefreshTokenTTL)
	resolver := gymctx.NewResolver(gymsRepo, selectionStore, logger)

	// Initialize MFA service if configured
	var mfaService *auth.MFAService
	if cfg.HasMFA() {
		encryptionKey, err := hex.DecodeString(cfg.MFAEncryptionKey)
		if err != nil || len(encryptionKey) != 32 {
			logger.Error("MFA_ENCRYPTION_KEY must be 64-char hex (32 bytes)")
			os.Exit(1)
		}

		mfaService = auth.NewMFAService(
			auth.MFAConfig{
				Issuer:        cfg.JWTIssuer,
				EncryptionKey: encryptionKey,
			},
			db,
			mfaSecretsRepo,
			mfaRecoveryCodesRepo,
			usersRepo,
		)
		logger.Info("MFA service enabled")
	}

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		DB:              db,
		PasswordService: passwordService,
		SessionService:  sessionService,
		MFAService:      mfaService,
		Resolver:        resolver,
		UsersRepo:       usersRepo,
		GymsRepo:        gymsRepo,
		MembershipsRepo: membershipsRepo,
		MembersRepo:     membersRepo,
		ClassesRepo:     classesRepo,
		RateLimitConfig: cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		Validation:      cfg.Validation,
		CookieSecure:    cfg.CookieSecure,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
