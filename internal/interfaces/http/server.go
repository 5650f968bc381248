// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application
// service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hireflowhq/hireflow/internal/application/service"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
	"github.com/hireflowhq/hireflow/internal/domain/policy"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config             ServerConfig
	httpServer         *http.Server
	router             *gin.Engine
	offerService       service.OfferService
	requisitionService service.RequisitionService
	logger             Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	offerService service.OfferService,
	requisitionService service.RequisitionService,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:             config,
		router:             router,
		offerService:       offerService,
		requisitionService: requisitionService,
		logger:             logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

const actorKey = "actor"

// actorMiddleware resolves the authenticated caller from the identity headers
// set by the gateway. Requests without an identity are rejected.
func (s *Server) actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := entity.Actor{
			Name: c.GetHeader("X-User-Name"),
			Role: c.GetHeader("X-User-Role"),
		}
		fmt.Sscanf(c.GetHeader("X-User-ID"), "%d", &actor.ID)

		if actor.ID == 0 || actor.Role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing caller identity",
			})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// requireOp gates a route on the role policy for an operation
func (s *Server) requireOp(op policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := currentActor(c)
		if !policy.CanPerform(actor.Role, op) {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   fmt.Sprintf("role %q may not perform %s", actor.Role, op),
			})
			return
		}
		c.Next()
	}
}

func currentActor(c *gin.Context) entity.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(entity.Actor); ok {
			return actor
		}
	}
	return entity.Actor{}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.offerService, s.requisitionService, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api/v1")
	api.Use(s.actorMiddleware())
	{
		offers := api.Group("/offers")
		{
			offers.POST("", s.requireOp(policy.OpOfferCreate), handlers.CreateOffer)
			offers.GET("", s.requireOp(policy.OpOfferRead), handlers.ListOffers)
			offers.GET("/:offer_id", s.requireOp(policy.OpOfferRead), handlers.GetOffer)
			offers.POST("/:offer_id/submit", s.requireOp(policy.OpOfferSubmit), handlers.SubmitOffer)
			offers.POST("/:offer_id/approval", s.requireOp(policy.OpOfferApprove), handlers.RecordApproval)
			offers.POST("/:offer_id/letter", s.requireOp(policy.OpOfferGenerateLetter), handlers.GenerateLetter)
			offers.POST("/:offer_id/action", s.requireOp(policy.OpOfferCandidateAction), handlers.CandidateAction)
		}

		reqs := api.Group("/requisitions")
		{
			reqs.POST("", s.requireOp(policy.OpRequisitionCreate), handlers.CreateRequisition)
			reqs.GET("", s.requireOp(policy.OpRequisitionRead), handlers.ListRequisitions)
			reqs.GET("/:id", s.requireOp(policy.OpRequisitionRead), handlers.GetRequisition)
			reqs.PUT("/:id", s.requireOp(policy.OpRequisitionUpdate), handlers.UpdateRequisition)
			reqs.PUT("/:id/approval", s.requireOp(policy.OpRequisitionApprove), handlers.SetApprovalStatus)
			reqs.PUT("/:id/assign", s.requireOp(policy.OpRequisitionAssign), handlers.AssignRecruiter)
			reqs.DELETE("/:id", s.requireOp(policy.OpRequisitionDelete), handlers.DeleteRequisition)
			reqs.GET("/:id/activity", s.requireOp(policy.OpRequisitionRead), handlers.GetActivityLog)
			reqs.POST("/:id/activity", s.requireOp(policy.OpRequisitionUpdate), handlers.LogActivity)
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
