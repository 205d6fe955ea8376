// Package metrics exposes Prometheus collectors for the refresh pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles the pipeline collectors with their backing registry so the
// HTTP layer can mount a scrape endpoint from the same instance the scheduler
// writes to.
type Registry struct {
	Registry *prometheus.Registry

	RefreshCycleDuration *prometheus.HistogramVec
	TenantsRefreshed     *prometheus.CounterVec
	TenantFailures       *prometheus.CounterVec
	MetricsUpserted      *prometheus.CounterVec
	SkippedCycles        *prometheus.CounterVec
	ActiveTenants        prometheus.Gauge
}

// NewRegistry creates the collector set on a fresh registry
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		Registry: reg,
		RefreshCycleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coursepulse",
			Subsystem: "refresh",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of full refresh cycles by tier.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"tier"}),
		TenantsRefreshed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coursepulse",
			Subsystem: "refresh",
			Name:      "tenants_refreshed_total",
			Help:      "Tenants refreshed successfully, by tier.",
		}, []string{"tier"}),
		TenantFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coursepulse",
			Subsystem: "refresh",
			Name:      "tenant_failures_total",
			Help:      "Tenant refresh attempts that ended in error, by tier.",
		}, []string{"tier"}),
		MetricsUpserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coursepulse",
			Subsystem: "refresh",
			Name:      "metrics_upserted_total",
			Help:      "Cached metric rows written, by metric type.",
		}, []string{"metric_type"}),
		SkippedCycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coursepulse",
			Subsystem: "refresh",
			Name:      "skipped_cycles_total",
			Help:      "Tier ticks skipped because the previous cycle was still running.",
		}, []string{"tier"}),
		ActiveTenants: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "coursepulse",
			Subsystem: "tenant",
			Name:      "active_total",
			Help:      "Tenants currently registered and active.",
		}),
	}
}
