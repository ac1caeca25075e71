package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex-platform/tf-forge/internal/api"
	"github.com/apex-platform/tf-forge/internal/api/handlers"
	"github.com/apex-platform/tf-forge/internal/gitlab"
	"github.com/apex-platform/tf-forge/internal/repository"
	"github.com/apex-platform/tf-forge/internal/services"
	"github.com/apex-platform/tf-forge/pkg/config"
	"github.com/apex-platform/tf-forge/pkg/database"
	"github.com/apex-platform/tf-forge/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting tf-forge",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("database connected")

	// Repositories
	resourceRepo := repository.NewResourceRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	statusRepo := repository.NewStatusRepository(db)

	// Services
	templateStore := services.NewTemplateStore(templateRepo, cfg.TemplateCacheSize, cfg.TemplateCacheTTL)
	ledger := services.NewStatusLedger(statusRepo)
	publisher := gitlab.NewClient(cfg.GitLabBaseURL)
	generationSvc := services.NewGenerationService(resourceRepo, templateStore, credentialRepo, publisher, ledger)

	// Router
	router := api.NewRouter(api.Dependencies{
		AuthSecret:       []byte(cfg.AuthSecret),
		TerraformHandler: handlers.NewTerraformHandler(generationSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
