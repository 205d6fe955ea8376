// Package container wires the long-lived singletons the rest of the process
// depends on.
package container

import (
	"fmt"

	"github.com/CoursePulse/coursepulse-go/internal/application/services"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/email"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/metrics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/performance"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/scheduler"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/tenant"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// Container holds every singleton service created at startup
type Container struct {
	Logger        *logging.ChanneledLogger
	PerfTracker   *performance.Tracker
	Metrics       *metrics.Registry
	TenantManager *tenant.Manager
	TierAssign    *config.TierAssignment
	Refresh       *services.MetricRefreshService
	Digest        *email.DigestService
	Scheduler     *scheduler.RefreshScheduler
}

// managerDirectory adapts the tenant manager to the refresh pipeline's view
type managerDirectory struct {
	manager *tenant.Manager
}

func (d managerDirectory) ActiveTenantIDs() []string {
	return d.manager.ActiveTenantIDs()
}

func (d managerDirectory) Repositories(tenantID string) (services.TenantRepositories, error) {
	return d.manager.NewContextFromID(tenantID)
}

// New builds the full dependency graph
func New(logger *logging.ChanneledLogger) (*Container, error) {
	tierAssign, err := config.LoadTierAssignment(config.TierConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier assignment: %w", err)
	}

	perfTracker := performance.NewTracker(config.PerfMarkerCapacity, logger.Perf())
	collectors := metrics.NewRegistry()
	manager := tenant.NewManager(logger)

	refresh := services.NewMetricRefreshService(
		managerDirectory{manager: manager},
		tierAssign,
		logger,
		perfTracker,
		collectors,
	)

	digest := email.NewDigestService(logger)

	return &Container{
		Logger:        logger,
		PerfTracker:   perfTracker,
		Metrics:       collectors,
		TenantManager: manager,
		TierAssign:    tierAssign,
		Refresh:       refresh,
		Digest:        digest,
		Scheduler:     scheduler.NewRefreshScheduler(refresh, digest, logger, collectors),
	}, nil
}
