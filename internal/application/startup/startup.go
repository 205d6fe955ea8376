// Package startup orchestrates process initialization and graceful shutdown.
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/application/container"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/presentation/http/server"
)

// Initialize brings the whole service up in order and blocks until shutdown:
// logger, container, tenant pre-activation, scheduler, HTTP server.
func Initialize() error {
	log.Println("CoursePulse starting...")

	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	logger.Startup().Info("Logger initialized")

	c, err := container.New(logger)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	if err := c.TenantManager.PreActivateAllTenants(); err != nil {
		return fmt.Errorf("failed to pre-activate tenants: %w", err)
	}
	c.Metrics.ActiveTenants.Set(float64(len(c.TenantManager.ActiveTenantIDs())))

	c.Scheduler.Start()

	srv := server.New(c)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Startup().Info("CoursePulse ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Shutdown().Info("Shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Shutdown().Error("HTTP server exited", "error", err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Shutdown().Warn("HTTP server shutdown error", "error", err.Error())
	}

	c.Scheduler.Stop()
	c.TenantManager.Close()

	logger.Shutdown().Info("CoursePulse stopped")
	return nil
}
