// Package server assembles the gin engine and owns the HTTP listener
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/monitoring"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
	"github.com/alchemorsel/nutriplan/pkg/healthcheck"
)

// Handlers groups the route handlers mounted by the server
type Handlers struct {
	Planning   *handlers.PlanningHandler
	Foods      *handlers.FoodHandler
	Onboarding *handlers.OnboardingHandler
	Tools      *handlers.ToolHandler
}

// Server represents the HTTP server
type Server struct {
	config    *config.Config
	logger    *zap.Logger
	engine    *gin.Engine
	server    *http.Server
	telemetry *monitoring.TelemetryProvider
}

// NewServer creates the engine and the http.Server around it. metrics and
// telemetry may be nil.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	mw *middleware.Middleware,
	metrics *monitoring.MetricsCollector,
	telemetry *monitoring.TelemetryProvider,
	health *healthcheck.HealthCheck,
	h Handlers,
) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger.Named("server"),
		telemetry: telemetry,
	}

	s.engine = s.setupRoutes(mw, metrics, health, h)

	var handler http.Handler = s.engine
	if telemetry != nil {
		handler = telemetry.InstrumentHandler(handler, cfg.App.Name)
	}
	if cfg.Server.EnableHTTP2 {
		handler = h2c.NewHandler(handler, &http2.Server{IdleTimeout: cfg.Server.IdleTimeout})
	}

	s.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

func (s *Server) setupRoutes(
	mw *middleware.Middleware,
	metrics *monitoring.MetricsCollector,
	health *healthcheck.HealthCheck,
	h Handlers,
) *gin.Engine {
	if s.config.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		handlers.RegisterFieldNames(v)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		s.logger.Warn("Invalid trusted proxies", zap.Error(err))
	}

	r.Use(mw.RequestID())
	r.Use(mw.Recovery())
	r.Use(mw.Logger())
	if metrics != nil {
		r.Use(metrics.HTTPMiddleware())
	}
	r.Use(mw.Tracing())
	r.Use(mw.Security())
	r.Use(mw.CORS())
	r.Use(mw.RateLimit())
	r.Use(mw.Compression())
	r.Use(mw.ErrorHandler())
	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.NewNotFoundError("route"))
	})

	if health != nil {
		r.GET(s.config.Monitoring.HealthCheckPath, health.LivenessHandler())
		r.GET(s.config.Monitoring.ReadinessPath, health.ReadinessHandler())
		r.GET("/health/details", health.Handler())
	}
	if metrics != nil && s.config.Monitoring.EnableMetrics {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	if h.Onboarding != nil {
		h.Onboarding.RegisterSocket(v1)
	}

	api := v1.Group("")
	api.Use(mw.Timeout(s.config.Server.RequestTimeout))
	if h.Planning != nil {
		h.Planning.Register(api)
	}
	if h.Foods != nil {
		h.Foods.Register(api)
	}
	if h.Onboarding != nil {
		h.Onboarding.Register(api)
	}

	if h.Tools != nil {
		mcp := r.Group("/mcp")
		mcp.Use(mw.Timeout(s.config.Server.RequestTimeout))
		h.Tools.Register(mcp)
	}

	return r
}

// Handler returns the routed engine without the listener wrappers
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves until Shutdown. http.ErrServerClosed is not an error.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.Bool("h2c", s.config.Server.EnableHTTP2),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
