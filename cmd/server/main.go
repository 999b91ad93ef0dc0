package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"diary-backend/internal/auth"
	"diary-backend/internal/config"
	"diary-backend/internal/database"
	"diary-backend/internal/logging"
	"diary-backend/internal/oauth"
	"diary-backend/internal/repository"
	"diary-backend/internal/router"
	"diary-backend/internal/service"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	log := logging.Setup(cfg.Log)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	log.WithField("mode", cfg.Mode).Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize database connection and schema
	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	// 3. Initialize repositories
	memberRepo := repository.NewMemberRepo(db)
	refreshRepo := repository.NewRefreshRepo(db)
	loginCheckRepo := repository.NewLoginCheckRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// 4. Initialize services
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	var authOpts []service.AuthOption
	if cfg.OAuth.GoogleClientID != "" {
		authOpts = append(authOpts, service.WithGoogleVerifier(oauth.NewGoogleVerifier(cfg.OAuth.GoogleClientID)))
	}
	authService := service.NewAuthService(memberRepo, refreshRepo, loginCheckRepo, auditRepo, tokens,
		logging.Component(log, "auth"), authOpts...)
	memberService := service.NewMemberService(memberRepo, refreshRepo, auditRepo, logging.Component(log, "member"))
	cleanupService := service.NewCleanupService(refreshRepo, cfg.Cleanup.Interval, logging.Component(log, "cleanup"))

	// 5. Setup router
	r := router.New(cfg, router.Deps{
		Tokens:  tokens,
		Auth:    authService,
		Members: memberService,
		Logger:  log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Run server and background worker until a signal arrives
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		cleanupService.Start(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if cerr := database.Close(db); cerr != nil {
		log.WithError(cerr).Warn("Failed to close database")
	}
	if err != nil {
		log.WithError(err).Error("Server stopped with error")
		os.Exit(1)
	}
	log.Info("Server exited")
}
