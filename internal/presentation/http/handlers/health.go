package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/performance"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/tenant"
)

// HealthHandler serves liveness and basic runtime stats
type HealthHandler struct {
	manager   *tenant.Manager
	perf      *performance.Tracker
	startedAt time.Time
}

// NewHealthHandler creates the health handler
func NewHealthHandler(manager *tenant.Manager, perf *performance.Tracker) *HealthHandler {
	return &HealthHandler{
		manager:   manager,
		perf:      perf,
		startedAt: time.Now().UTC(),
	}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptime":        time.Since(h.startedAt).String(),
		"activeTenants": len(h.manager.ActiveTenantIDs()),
	})
}

// Performance handles GET /api/v1/health/performance, an admin view over the
// in-memory operation markers.
func (h *HealthHandler) Performance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"operations": h.perf.Summary(),
		"recent":     h.perf.RecentMarkers(50),
	})
}
