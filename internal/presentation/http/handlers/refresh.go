package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/scheduler"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// RefreshHandler exposes the manual refresh trigger for admins
type RefreshHandler struct {
	scheduler *scheduler.RefreshScheduler
	logger    *logging.ChanneledLogger
}

// NewRefreshHandler creates the manual refresh handler
func NewRefreshHandler(sched *scheduler.RefreshScheduler, logger *logging.ChanneledLogger) *RefreshHandler {
	return &RefreshHandler{scheduler: sched, logger: logger}
}

// TriggerTier handles POST /api/v1/refresh/:tier
func (h *RefreshHandler) TriggerTier(c *gin.Context) {
	tier := config.RefreshTier(c.Param("tier"))
	switch tier {
	case config.TierLight, config.TierMedium, config.TierHeavy:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tier, expected light, medium, or heavy"})
		return
	}

	summary, ran, err := h.scheduler.TriggerTier(c.Request.Context(), tier)
	if err != nil {
		h.logger.Scheduler().Error("Manual tier refresh failed",
			"tier", tier, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	if !ran {
		c.JSON(http.StatusConflict, gin.H{
			"error": "a refresh for this tier is already running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
