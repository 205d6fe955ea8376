// Package server owns the HTTP server lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CoursePulse/coursepulse-go/internal/application/container"
	"github.com/CoursePulse/coursepulse-go/internal/presentation/http/routes"
	"github.com/CoursePulse/coursepulse-go/pkg/config"
)

// Server wraps the gin engine and the underlying http.Server
type Server struct {
	httpServer *http.Server
	container  *container.Container
}

// New builds the engine, registers routes, and prepares the listener
func New(c *container.Container) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	routes.Register(engine, c)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + config.Port,
			Handler:      engine,
			ReadTimeout:  config.ServerReadTimeout,
			WriteTimeout: config.ServerWriteTimeout,
			IdleTimeout:  config.ServerIdleTimeout,
		},
		container: c,
	}
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	s.container.Logger.Startup().Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
