package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "qa-forum/docs" // This is for Swagger
	"qa-forum/internal/auth"
	"qa-forum/internal/config"
	"qa-forum/internal/curation"
	"qa-forum/internal/database"
	"qa-forum/internal/handlers"
	"qa-forum/internal/logger"
	"qa-forum/internal/middleware"
	"qa-forum/internal/repository"
	"qa-forum/internal/scheduler"
	"qa-forum/internal/service"
)

// @title Q&A Forum API
// @version 1.0
// @description Trust-weighted answer curation, role administration and reviewer requests

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level})

	slog.Info("Starting application",
		"app", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
	)

	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()
	slog.Info("Database connection established")

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Repositories
	userRepo := repository.NewUserRepository(db.DB)
	trustRepo := repository.NewTrustRepository(db.DB)
	answerRepo := repository.NewAnswerRepository(db.DB)
	reviewRepo := repository.NewReviewRepository(db.DB)
	profileRepo := repository.NewReviewerProfileRepository(db.DB)
	requestRepo := repository.NewReviewerRequestRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)

	// Services
	authService, err := auth.NewService(&cfg.JWT)
	if err != nil {
		slog.Error("Failed to initialize token signing", "error", err)
		os.Exit(1)
	}
	auditSvc := service.NewAuditService(auditRepo)
	roleSvc := service.NewRoleService(userRepo, profileRepo, auditSvc)
	authSvc := service.NewAuthService(userRepo, roleSvc, authService, auditSvc)
	trustSvc := service.NewTrustService(trustRepo)
	curationSvc := service.NewCurationService(curation.NewEngine(answerRepo, reviewRepo), trustRepo)
	requestSvc := service.NewReviewerRequestService(requestRepo, roleSvc, auditSvc)
	profileSvc := service.NewReviewerProfileService(profileRepo)
	forumSvc := service.NewForumService(answerRepo, reviewRepo, auditSvc)

	if created, err := authSvc.EnsureBootstrapAdmin(cfg.Bootstrap.Username, cfg.Bootstrap.Password); err != nil {
		slog.Error("Failed to create bootstrap admin", "error", err)
		os.Exit(1)
	} else if !created && cfg.Bootstrap.Username != "" {
		slog.Info("Bootstrap admin skipped, users already exist")
	}

	sched := scheduler.NewScheduler(requestRepo, &cfg.Scheduler)
	if err := sched.Start(); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	router := &handlers.Router{
		Auth:     handlers.NewAuthHandler(authSvc, authService, middleware.NewAuditMiddleware(auditRepo)),
		Users:    handlers.NewUserHandler(authSvc, roleSvc),
		Trust:    handlers.NewTrustHandler(trustSvc),
		Curation: handlers.NewCurationHandler(curationSvc),
		Reviewer: handlers.NewReviewerHandler(requestSvc, profileSvc),
		Forum:    handlers.NewForumHandler(forumSvc),
		Audit:    handlers.NewAuditHandler(auditRepo),
		Health:   handlers.NewHealthHandler(db),
		AuthMw:   middleware.NewAuthMiddleware(authService),
		RBACMw:   middleware.NewRBACMiddleware(userRepo),
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		slog.Error("Server failed to start", "error", err)
		return
	case <-quit:
	}

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server stopped")
}
