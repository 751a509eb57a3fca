package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"encore/api"
	"encore/config"
	"encore/database"
	"encore/repository"
	"encore/scheduler"
	"encore/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting encore server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize repositories
	uowFactory := repository.NewUnitOfWorkFactory(db)
	artistRepo := repository.NewArtistRepository(db)
	streamRunRepo := repository.NewStreamRunRepository(db)
	gameClockRepo := repository.NewGameClockRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	gameClock := service.NewGameClockService(gameClockRepo)
	auditLogger := service.NewAuditService(auditRepo)
	coordinator := service.NewRunCoordinator(uowFactory, streamRunRepo, gameClock, cfg.LeaseTimeout)
	streamUpdates := service.NewStreamUpdateService(uowFactory, artistRepo, coordinator, auditLogger, cfg.BatchSize)

	// Start the scheduled trigger
	worker := scheduler.NewWorker(streamUpdates, cfg.SchedulerInterval)
	stopWorker := worker.Start(ctx)
	defer stopWorker()

	// Start the HTTP server
	server := api.New(db, streamUpdates, auditRepo, cfg.AdminTokenHash)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s (%s mode)", cfg.HTTPAddr, cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}
