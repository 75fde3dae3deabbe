// Package server is the HTTP boundary of the agenda engine: four operation
// routes plus health and metrics, behind CORS, request-id, and deadline
// middleware.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"careagenda/internal/agenda"
	"careagenda/internal/config"
	"careagenda/internal/draft"
	"careagenda/internal/logging"
	"careagenda/internal/metrics"
)

// AgendaService is the application surface the routes delegate to.
type AgendaService interface {
	Prepare(ctx context.Context, req agenda.PrepareRequest) (*draft.EventDraft, error)
	Confirm(ctx context.Context, req agenda.ConfirmRequest) (agenda.ConfirmOutcome, error)
	Update(ctx context.Context, req agenda.UpdateRequest) (string, error)
	Cancel(ctx context.Context, req agenda.CancelRequest) (string, error)
}

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	service    AgendaService
	metrics    *metrics.Metrics
	logger     logging.Logger
	startTime  time.Time
}

// New builds the server. The engine is fully routed on return; Start only
// binds the listener.
func New(cfg config.ServerConfig, service AgendaService, m *metrics.Metrics, logger logging.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine:    engine,
		service:   service,
		metrics:   m,
		logger:    logging.OrNop(logger),
		startTime: time.Now(),
	}

	engine.Use(requestID())
	engine.Use(requestDeadline(cfg.RequestTimeout))
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.engine.Group("/api/agenda")
	api.POST("/prepare", s.handlePrepare)
	api.POST("/confirm", s.handleConfirm)
	api.POST("/update", s.handleUpdate)
	api.POST("/cancel", s.handleCancel)
}

// Handler exposes the routed engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("agenda server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("agenda server shutting down")
	return s.httpServer.Shutdown(ctx)
}
