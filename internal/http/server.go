// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/hardwarexpress/audittrail/internal/audit/http"
	auditService "github.com/hardwarexpress/audittrail/internal/audit/service"
	"github.com/hardwarexpress/audittrail/internal/metrics"
)

// readinessProbeTimeout bounds each readiness component check so a hung
// database or classifier cannot stall the endpoint.
const readinessProbeTimeout = 2 * time.Second

// Server represents the HTTP server for the audit trail API.
type Server struct {
	db         *sql.DB
	classifier auditService.Classifier
	router     *gin.Engine
	server     *http.Server
	logger     *slog.Logger
}

// NewServer creates a new HTTP server. The router starts empty; call
// SetupRouter with the handlers before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig holds the handlers and middleware settings used by SetupRouter
// to assemble the API router.
type RouterConfig struct {
	AuditLogHandler *auditHTTP.AuditLogHandler

	// Classifier, when set, is probed by the readiness endpoint. Probe
	// failures are reported as a component but do not gate readiness.
	Classifier auditService.Classifier

	MetricsEnabled   bool
	MetricsNamespace string
	MetricsProvider  *metrics.Provider

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// SetupRouter assembles the Gin router with middleware and routes.
func (s *Server) SetupRouter(cfg RouterConfig) {
	s.classifier = cfg.Classifier

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && cfg.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	// Health and readiness endpoints
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// API routes
	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(auditHTTP.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	v1.POST("/audit-logs", cfg.AuditLogHandler.RecordHandler)
	v1.GET("/audit-logs", cfg.AuditLogHandler.ListHandler)
	v1.GET("/audit-logs/:id", cfg.AuditLogHandler.GetHandler)

	s.router = router
}

// GetHandler returns the configured router for use as an http.Handler.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the service can take traffic. The
// database must be reachable; the classifier probe is reported as a
// component but never gates readiness, since ingestion keeps working
// with classification pending.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessProbeTimeout)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("readiness database ping failed", slog.String("error", err.Error()))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if s.classifier != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessProbeTimeout)
		defer cancel()

		if err := s.classifier.Health(ctx); err != nil {
			s.logger.Warn("readiness classifier probe failed", slog.String("error", err.Error()))
			components["classifier"] = "error"
		} else {
			components["classifier"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
