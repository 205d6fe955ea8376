package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
	"github.com/CoursePulse/coursepulse-go/internal/presentation/http/middleware"
)

// AuthHandler issues admin tokens for tenants with an admin password set
type AuthHandler struct {
	logger *logging.ChanneledLogger
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(logger *logging.ChanneledLogger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login. The tenant's admin password is
// stored as a bcrypt hash; a tenant without one cannot log in at all.
func (h *AuthHandler) Login(c *gin.Context) {
	tenantCtx, ok := middleware.GetTenantContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context missing"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	cfg := tenantCtx.Config
	if cfg.AdminPasswordHash == "" || cfg.JWTSecret == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin access not configured for tenant"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		h.logger.Auth().Warn("Failed admin login attempt", "tenantId", tenantCtx.TenantID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	now := time.Now().UTC()
	claims := &middleware.AdminClaims{
		TenantID: tenantCtx.TenantID,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			Subject:   "admin@" + tenantCtx.TenantID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		h.logger.LogError(logging.ChannelAuth, "sign_admin_token", err, tenantCtx.TenantID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	h.logger.Auth().Info("Admin login", "tenantId", tenantCtx.TenantID)
	c.JSON(http.StatusOK, gin.H{
		"token":     signed,
		"expiresAt": claims.ExpiresAt.Time,
	})
}
