package analytics

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/persistence/database"
)

// MetricRepository persists cached metric rows. Writes are overwrite-only
// upserts keyed on (tenant_id, metric_type); expired rows are kept so the
// read surface can serve last-known-good data.
type MetricRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewMetricRepository creates a metric repository for one tenant database
func NewMetricRepository(db *database.DB, logger *logging.ChanneledLogger) *MetricRepository {
	return &MetricRepository{db: db, logger: logger}
}

// Upsert writes or replaces the cached row for the metric's type
func (r *MetricRepository) Upsert(metric *analytics.CachedMetric) error {
	if metric.ID == "" {
		metric.ID = ulid.Make().String()
	}

	query := `
		INSERT INTO cached_metrics (id, tenant_id, metric_type, metric_data, calculated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, metric_type) DO UPDATE SET
			metric_data = excluded.metric_data,
			calculated_at = excluded.calculated_at,
			expires_at = excluded.expires_at`

	_, err := r.db.ExecTimed(query,
		metric.ID,
		metric.TenantID,
		string(metric.MetricType),
		string(metric.MetricData),
		metric.CalculatedAt.UTC().Format(time.RFC3339),
		metric.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cached metric %s for tenant %s: %w",
			metric.MetricType, metric.TenantID, err)
	}
	return nil
}

// FindByType returns the cached row for one metric type. The boolean is
// false when the tenant has no row of that type yet.
func (r *MetricRepository) FindByType(tenantID string, metricType analytics.MetricType) (*analytics.CachedMetric, bool, error) {
	query := `
		SELECT id, metric_type, metric_data, calculated_at, expires_at
		FROM cached_metrics
		WHERE metric_type = ?`

	row := r.db.QueryRow(query, string(metricType))
	metric, err := r.scanMetric(row.Scan, tenantID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cached metric %s for tenant %s: %w",
			metricType, tenantID, err)
	}
	return metric, true, nil
}

// FindAll returns every cached metric row for the tenant
func (r *MetricRepository) FindAll(tenantID string) ([]*analytics.CachedMetric, error) {
	query := `
		SELECT id, metric_type, metric_data, calculated_at, expires_at
		FROM cached_metrics
		ORDER BY metric_type ASC`

	rows, err := r.db.QueryTimed(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached metrics for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var metrics []*analytics.CachedMetric
	for rows.Next() {
		metric, err := r.scanMetric(rows.Scan, tenantID)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, metric)
	}
	return metrics, rows.Err()
}

func (r *MetricRepository) scanMetric(scan func(...interface{}) error, tenantID string) (*analytics.CachedMetric, error) {
	var (
		metric                             analytics.CachedMetric
		metricType, data, calcAt, expireAt string
	)

	if err := scan(&metric.ID, &metricType, &data, &calcAt, &expireAt); err != nil {
		return nil, err
	}

	calculated, err := parseTimestamp(calcAt)
	if err != nil {
		return nil, fmt.Errorf("bad calculated_at on cached metric %s: %w", metric.ID, err)
	}
	expires, err := parseTimestamp(expireAt)
	if err != nil {
		return nil, fmt.Errorf("bad expires_at on cached metric %s: %w", metric.ID, err)
	}

	metric.TenantID = tenantID
	metric.MetricType = analytics.MetricType(metricType)
	metric.MetricData = []byte(data)
	metric.CalculatedAt = calculated
	metric.ExpiresAt = expires
	return &metric, nil
}
