package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/domain/repositories"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/metrics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/performance"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// TenantRepositories is what one tenant exposes to the refresh pipeline.
// Satisfied by tenant.Context.
type TenantRepositories interface {
	StudentRepo() repositories.StudentRepository
	EventRepo() repositories.EventRepository
	MetricRepo() repositories.CachedMetricRepository
}

// TenantDirectory lists active tenants and opens their repositories.
type TenantDirectory interface {
	ActiveTenantIDs() []string
	Repositories(tenantID string) (TenantRepositories, error)
}

// RefreshSummary describes one completed tier refresh batch
type RefreshSummary struct {
	RunID            string        `json:"runId"`
	Tier             string        `json:"tier"`
	TenantsProcessed int           `json:"tenantsProcessed"`
	TenantsFailed    int           `json:"tenantsFailed"`
	MetricsUpserted  int           `json:"metricsUpserted"`
	Failures         []string      `json:"failures"`
	Duration         time.Duration `json:"duration"`
}

// MetricRefreshService runs one tier's recompute batch across all active
// tenants. Tenants fan out under a bounded worker pool; the scorers assigned
// to the tier run sequentially inside each tenant. A failure on one metric or
// one tenant never aborts the rest of the batch.
type MetricRefreshService struct {
	directory TenantDirectory
	tiers     *config.TierAssignment
	logger    *logging.ChanneledLogger
	perf      *performance.Tracker
	collector *metrics.Registry

	commitment  *CommitmentScoreService
	consistency *ConsistencyScoreService
	ahaMoments  *AhaMomentService
	pathways    *PathwayService
	popularity  *ContentPopularityService
	feedback    *FeedbackThemeService
}

// NewMetricRefreshService wires the refresh orchestrator
func NewMetricRefreshService(
	directory TenantDirectory,
	tiers *config.TierAssignment,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
	collector *metrics.Registry,
) *MetricRefreshService {
	return &MetricRefreshService{
		directory:   directory,
		tiers:       tiers,
		logger:      logger,
		perf:        perf,
		collector:   collector,
		commitment:  NewCommitmentScoreService(logger),
		consistency: NewConsistencyScoreService(logger),
		ahaMoments:  NewAhaMomentService(logger),
		pathways:    NewPathwayService(logger),
		popularity:  NewContentPopularityService(logger),
		feedback:    NewFeedbackThemeService(logger),
	}
}

// RefreshTier recomputes every metric type assigned to the tier for every
// active tenant and upserts the cached rows with a fresh TTL.
func (s *MetricRefreshService) RefreshTier(ctx context.Context, tier config.RefreshTier) (*RefreshSummary, error) {
	metricTypes, err := s.resolveMetricTypes(tier)
	if err != nil {
		return nil, err
	}

	summary := &RefreshSummary{
		RunID:    uuid.NewString(),
		Tier:     string(tier),
		Failures: []string{},
	}

	marker := s.perf.StartOperation("refresh_tier_"+string(tier), "")
	marker.AddMetadata("runId", summary.RunID)
	start := time.Now()

	tenantIDs := s.directory.ActiveTenantIDs()
	sort.Strings(tenantIDs)

	s.logger.Scheduler().Info("Tier refresh starting",
		"tier", tier, "runId", summary.RunID, "tenants", len(tenantIDs))

	concurrency := config.RefreshTenantConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(tenantID string) {
			defer wg.Done()
			defer func() { <-sem }()

			upserted, err := s.refreshTenant(tenantID, tier, metricTypes)

			mu.Lock()
			defer mu.Unlock()
			summary.MetricsUpserted += upserted
			if err != nil {
				summary.TenantsFailed++
				summary.Failures = append(summary.Failures,
					fmt.Sprintf("%s: %s", tenantID, err.Error()))
				if s.collector != nil {
					s.collector.TenantFailures.WithLabelValues(string(tier)).Inc()
				}
				return
			}
			summary.TenantsProcessed++
			if s.collector != nil {
				s.collector.TenantsRefreshed.WithLabelValues(string(tier)).Inc()
			}
		}(tenantID)
	}
	wg.Wait()

	sort.Strings(summary.Failures)
	summary.Duration = time.Since(start)

	if s.collector != nil {
		s.collector.RefreshCycleDuration.WithLabelValues(string(tier)).Observe(summary.Duration.Seconds())
	}

	marker.SetSuccess(summary.TenantsFailed == 0)
	marker.AddMetadata("tenantsProcessed", summary.TenantsProcessed)
	marker.AddMetadata("tenantsFailed", summary.TenantsFailed)
	marker.Complete()

	s.logger.Scheduler().Info("Tier refresh complete",
		"tier", tier, "runId", summary.RunID,
		"tenantsProcessed", summary.TenantsProcessed,
		"tenantsFailed", summary.TenantsFailed,
		"metricsUpserted", summary.MetricsUpserted,
		"duration", summary.Duration.String())

	return summary, nil
}

// refreshTenant loads the tenant's data once and runs every scorer assigned
// to the tier. A scorer failure leaves that metric's row stale and moves on.
func (s *MetricRefreshService) refreshTenant(tenantID string, tier config.RefreshTier, metricTypes []analytics.MetricType) (int, error) {
	repos, err := s.directory.Repositories(tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to open tenant: %w", err)
	}

	students, err := repos.StudentRepo().FindAll(tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to load students: %w", err)
	}

	now := time.Now().UTC()
	engagementEvents, feedbackEvents, err := s.loadEvents(repos.EventRepo(), tenantID, metricTypes)
	if err != nil {
		return 0, err
	}

	upserted := 0
	var lastErr error
	for _, metricType := range metricTypes {
		data, err := s.computeMetric(tenantID, metricType, students, engagementEvents, feedbackEvents, now)
		if err != nil {
			lastErr = err
			s.logger.WithTenantAndOperation(logging.ChannelScheduler, tenantID, "refresh_metric").Error(
				"Metric computation failed, leaving cached row stale",
				"metricType", metricType, "error", err.Error())
			continue
		}

		row := &analytics.CachedMetric{
			TenantID:     tenantID,
			MetricType:   metricType,
			MetricData:   data,
			CalculatedAt: now,
			ExpiresAt:    now.Add(config.TierTTL(tier)),
		}
		if err := repos.MetricRepo().Upsert(row); err != nil {
			lastErr = err
			s.logger.WithTenantAndOperation(logging.ChannelScheduler, tenantID, "refresh_metric").Error(
				"Metric upsert failed", "metricType", metricType, "error", err.Error())
			continue
		}

		upserted++
		if s.collector != nil {
			s.collector.MetricsUpserted.WithLabelValues(string(metricType)).Inc()
		}
	}

	if upserted == 0 && lastErr != nil {
		return 0, lastErr
	}
	return upserted, nil
}

// loadEvents fetches each event subset at most once per tenant per batch
func (s *MetricRefreshService) loadEvents(repo repositories.EventRepository, tenantID string, metricTypes []analytics.MetricType) (engagement, feedback []*analytics.Event, err error) {
	needEngagement := false
	needFeedback := false
	for _, metricType := range metricTypes {
		if metricType == analytics.MetricFeedbackThemes {
			needFeedback = true
		} else {
			needEngagement = true
		}
	}

	if needEngagement {
		engagement, err = repo.FindByTypes(tenantID, analytics.EngagementEventTypes(), time.Time{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load engagement events: %w", err)
		}
	}
	if needFeedback {
		feedback, err = repo.FindByTypes(tenantID, []analytics.EventType{analytics.EventTypeFeedback}, time.Time{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load feedback events: %w", err)
		}
	}
	return engagement, feedback, nil
}

func (s *MetricRefreshService) computeMetric(
	tenantID string,
	metricType analytics.MetricType,
	students []*analytics.Student,
	engagementEvents, feedbackEvents []*analytics.Event,
	now time.Time,
) (data json.RawMessage, err error) {
	// A panicking scorer must fail only this (tenant, metric_type) pair.
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("scorer panic for %s: %v", metricType, r)
		}
	}()

	var result interface{}
	switch metricType {
	case analytics.MetricCommitment:
		result = s.commitment.Compute(tenantID, students, engagementEvents, now)
	case analytics.MetricConsistency:
		result = s.consistency.Compute(tenantID, students, engagementEvents, now)
	case analytics.MetricAhaMoments:
		result = s.ahaMoments.Compute(tenantID, students, engagementEvents, now)
	case analytics.MetricContentPathways:
		result = s.pathways.Compute(tenantID, students, engagementEvents, now)
	case analytics.MetricPopularContentDaily:
		result = s.popularity.Compute(tenantID, students, engagementEvents, now)
	case analytics.MetricFeedbackThemes:
		result = s.feedback.Compute(tenantID, students, feedbackEvents, now)
	default:
		return nil, fmt.Errorf("no scorer registered for metric type %s", metricType)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s result: %w", metricType, err)
	}
	return encoded, nil
}

func (s *MetricRefreshService) resolveMetricTypes(tier config.RefreshTier) ([]analytics.MetricType, error) {
	raw := s.tiers.MetricTypes(tier)
	if len(raw) == 0 {
		return nil, fmt.Errorf("no metric types assigned to tier %s", tier)
	}

	metricTypes := make([]analytics.MetricType, 0, len(raw))
	for _, value := range raw {
		metricType, err := analytics.ParseMetricType(value)
		if err != nil {
			return nil, fmt.Errorf("bad tier assignment for %s: %w", tier, err)
		}
		metricTypes = append(metricTypes, metricType)
	}
	return metricTypes, nil
}
