package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/tenant"
)

const tenantContextKey = "tenantContext"

// TenantResolver resolves the tenant from the X-Tenant-ID header and attaches
// its context to the request. Requests without a resolvable tenant are
// rejected.
func TenantResolver(manager *tenant.Manager, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader("X-Tenant-ID")
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "missing X-Tenant-ID header",
			})
			return
		}

		tenantCtx, err := manager.NewContextFromID(tenantID)
		if err != nil {
			logger.Tenant().Warn("Rejected request for unresolvable tenant",
				"tenantId", tenantID, "error", err.Error())
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "unknown tenant",
			})
			return
		}

		c.Set(tenantContextKey, tenantCtx)
		c.Next()
	}
}

// GetTenantContext returns the tenant context attached by TenantResolver
func GetTenantContext(c *gin.Context) (*tenant.Context, bool) {
	value, exists := c.Get(tenantContextKey)
	if !exists {
		return nil, false
	}
	tenantCtx, ok := value.(*tenant.Context)
	return tenantCtx, ok
}
