package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
)

// AdminClaims is the JWT claim set issued by the login endpoint
type AdminClaims struct {
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAdmin validates the bearer token against the tenant's JWT secret.
// Any parse or validation error rejects the request; there is no fallback
// access path.
func RequireAdmin(logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantCtx, ok := GetTenantContext(c)
		if !ok || tenantCtx.Config.JWTSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "admin authentication not configured for tenant",
			})
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(tenantCtx.Config.JWTSecret), nil
		})

		if err != nil || !token.Valid || claims.Role != "admin" || claims.TenantID != tenantCtx.TenantID {
			logger.Auth().Warn("Rejected admin request",
				"tenantId", tenantCtx.TenantID, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		c.Next()
	}
}
