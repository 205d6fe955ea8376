// Package routes mounts the HTTP surface onto a gin engine.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CoursePulse/coursepulse-go/internal/application/container"
	"github.com/CoursePulse/coursepulse-go/internal/presentation/http/handlers"
	"github.com/CoursePulse/coursepulse-go/internal/presentation/http/middleware"
)

// Register wires every endpoint onto the engine
func Register(engine *gin.Engine, c *container.Container) {
	engine.Use(middleware.CORS())

	analyticsHandler := handlers.NewAnalyticsHandler(c.Logger)
	refreshHandler := handlers.NewRefreshHandler(c.Scheduler, c.Logger)
	authHandler := handlers.NewAuthHandler(c.Logger)
	healthHandler := handlers.NewHealthHandler(c.TenantManager, c.PerfTracker)

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		c.Metrics.Registry,
		promhttp.HandlerOpts{},
	)))

	api := engine.Group("/api/v1")
	api.GET("/health", healthHandler.Health)

	tenantScoped := api.Group("")
	tenantScoped.Use(middleware.TenantResolver(c.TenantManager, c.Logger))
	{
		tenantScoped.POST("/auth/login", authHandler.Login)
		tenantScoped.GET("/analytics", analyticsHandler.ListMetrics)
		tenantScoped.GET("/analytics/:metricType", analyticsHandler.GetMetric)

		admin := tenantScoped.Group("")
		admin.Use(middleware.RequireAdmin(c.Logger))
		{
			admin.POST("/refresh/:tier", refreshHandler.TriggerTier)
			admin.GET("/health/performance", healthHandler.Performance)
		}
	}
}
