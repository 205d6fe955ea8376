// Package scheduler drives the tiered refresh cadence with in-process
// tickers, one per tier.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/application/services"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/email"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/metrics"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// RefreshScheduler owns one ticker per refresh tier. Each tick runs the
// tier's batch to completion; a per-tier in-flight flag skips a tick when
// the previous run of the same tier is still going. Overlap would be
// harmless anyway since the cache write is an idempotent upsert, but
// skipping avoids redundant load.
type RefreshScheduler struct {
	refresh   *services.MetricRefreshService
	digest    *email.DigestService
	logger    *logging.ChanneledLogger
	collector *metrics.Registry

	inFlight map[config.RefreshTier]*atomic.Bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewRefreshScheduler creates a stopped scheduler
func NewRefreshScheduler(
	refresh *services.MetricRefreshService,
	digest *email.DigestService,
	logger *logging.ChanneledLogger,
	collector *metrics.Registry,
) *RefreshScheduler {
	inFlight := make(map[config.RefreshTier]*atomic.Bool)
	for _, tier := range config.Tiers() {
		inFlight[tier] = &atomic.Bool{}
	}
	return &RefreshScheduler{
		refresh:   refresh,
		digest:    digest,
		logger:    logger,
		collector: collector,
		inFlight:  inFlight,
	}
}

// Start launches the tier tickers. Each tier runs once immediately so a
// fresh deployment has warm caches without waiting a full interval.
func (s *RefreshScheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, tier := range config.Tiers() {
		s.wg.Add(1)
		go s.runTier(ctx, tier)
	}

	s.logger.Scheduler().Info("Refresh scheduler started",
		"lightInterval", config.LightTierInterval.String(),
		"mediumInterval", config.MediumTierInterval.String(),
		"heavyInterval", config.HeavyTierInterval.String())
}

// Stop cancels the tickers and waits for in-flight batches to finish
func (s *RefreshScheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Scheduler().Info("Refresh scheduler stopped")
}

func (s *RefreshScheduler) runTier(ctx context.Context, tier config.RefreshTier) {
	defer s.wg.Done()

	s.tick(ctx, tier)

	ticker := time.NewTicker(config.TierInterval(tier))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, tier)
		}
	}
}

// tick runs one tier batch unless the previous one is still in flight
func (s *RefreshScheduler) tick(ctx context.Context, tier config.RefreshTier) {
	guard := s.inFlight[tier]
	if !guard.CompareAndSwap(false, true) {
		s.logger.Scheduler().Warn("Skipping tick, previous batch still running", "tier", tier)
		if s.collector != nil {
			s.collector.SkippedCycles.WithLabelValues(string(tier)).Inc()
		}
		return
	}
	defer guard.Store(false)

	summary, err := s.refresh.RefreshTier(ctx, tier)
	if err != nil {
		s.logger.Scheduler().Error("Tier refresh aborted", "tier", tier, "error", err.Error())
		return
	}

	if summary.TenantsFailed > 0 && s.digest != nil {
		if err := s.digest.SendRefreshFailureDigest(summary); err != nil {
			s.logger.Alert().Warn("Failed to send refresh failure digest",
				"tier", tier, "error", err.Error())
		}
	}
}

// TriggerTier runs one tier batch on demand, for the manual refresh endpoint.
// Returns false without running when that tier is already in flight.
func (s *RefreshScheduler) TriggerTier(ctx context.Context, tier config.RefreshTier) (*services.RefreshSummary, bool, error) {
	guard := s.inFlight[tier]
	if !guard.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	defer guard.Store(false)

	summary, err := s.refresh.RefreshTier(ctx, tier)
	return summary, true, err
}
