// Package repositories defines the persistence interfaces consumed by the
// scoring pipeline. Concrete SQL implementations live under
// internal/infrastructure/persistence.
package repositories

import (
	"time"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
)

// StudentRepository reads the per-tenant student roster.
type StudentRepository interface {
	FindAll(tenantID string) ([]*analytics.Student, error)
}

// EventRepository reads the append-only per-tenant event stream. Events are
// returned in ascending created_at order with payloads already decoded into
// their typed variants; rows with unrecognized payload shapes are skipped.
type EventRepository interface {
	FindByTypes(tenantID string, types []analytics.EventType, since time.Time) ([]*analytics.Event, error)
}

// CachedMetricRepository persists computed metric rows. Upsert is
// overwrite-only on the (tenant_id, metric_type) key; no history is retained.
type CachedMetricRepository interface {
	Upsert(metric *analytics.CachedMetric) error
	FindByType(tenantID string, metricType analytics.MetricType) (*analytics.CachedMetric, bool, error)
	FindAll(tenantID string) ([]*analytics.CachedMetric, error)
}
