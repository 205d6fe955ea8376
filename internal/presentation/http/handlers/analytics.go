// Package handlers implements the read API over the metrics cache plus the
// admin endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CoursePulse/coursepulse-go/internal/domain/analytics"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/presentation/http/middleware"
)

// AnalyticsHandler serves cached metric rows. Reads never trigger
// recomputation; a stale row is served as-is with its staleness flagged.
type AnalyticsHandler struct {
	logger *logging.ChanneledLogger
}

// NewAnalyticsHandler creates the analytics read handler
func NewAnalyticsHandler(logger *logging.ChanneledLogger) *AnalyticsHandler {
	return &AnalyticsHandler{logger: logger}
}

type metricResponse struct {
	MetricType   string          `json:"metricType"`
	Data         json.RawMessage `json:"data"`
	CalculatedAt time.Time       `json:"calculatedAt"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	Stale        bool            `json:"stale"`
}

func toMetricResponse(metric *analytics.CachedMetric, now time.Time) metricResponse {
	return metricResponse{
		MetricType:   string(metric.MetricType),
		Data:         metric.MetricData,
		CalculatedAt: metric.CalculatedAt,
		ExpiresAt:    metric.ExpiresAt,
		Stale:        metric.IsStale(now),
	}
}

// GetMetric handles GET /api/v1/analytics/:metricType
func (h *AnalyticsHandler) GetMetric(c *gin.Context) {
	tenantCtx, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context missing"})
		return
	}

	metricType, err := analytics.ParseMetricType(c.Param("metricType"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metric, found, err := tenantCtx.MetricRepo().FindByType(tenantCtx.TenantID, metricType)
	if err != nil {
		h.logger.LogError(logging.ChannelAnalytics, "get_metric", err, tenantCtx.TenantID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load metric"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "metric not computed yet for this tenant",
		})
		return
	}

	c.JSON(http.StatusOK, toMetricResponse(metric, time.Now().UTC()))
}

// ListMetrics handles GET /api/v1/analytics
func (h *AnalyticsHandler) ListMetrics(c *gin.Context) {
	tenantCtx, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context missing"})
		return
	}

	metrics, err := tenantCtx.MetricRepo().FindAll(tenantCtx.TenantID)
	if err != nil {
		h.logger.LogError(logging.ChannelAnalytics, "list_metrics", err, tenantCtx.TenantID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load metrics"})
		return
	}

	now := time.Now().UTC()
	responses := make([]metricResponse, 0, len(metrics))
	for _, metric := range metrics {
		responses = append(responses, toMetricResponse(metric, now))
	}

	c.JSON(http.StatusOK, gin.H{"metrics": responses})
}
