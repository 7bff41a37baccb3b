package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/spigell/jobfinder/internal/gateway"
	"github.com/spigell/jobfinder/internal/logger"
)

const (
	serviceName     = "jobfinder"
	shutdownTimeout = 15 * time.Second
	maxBodySize     = "1M"
)

// Config controls the HTTP API.
type Config struct {
	Listen string
	// RateLimit is the number of requests per second allowed per client IP.
	// Zero disables limiting.
	RateLimit    float64
	AllowOrigins []string
	Version      string
}

// Server exposes a gateway over HTTP for the frontend.
type Server struct {
	echo    *echo.Echo
	gateway *gateway.Gateway
	cfg     Config
	logger  *zap.Logger
}

func New(g *gateway.Gateway, cfg Config, log *zap.Logger) *Server {
	log = logger.OrNop(log).Named("http")
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = errorHandler(log)

	s := &Server{echo: e, gateway: g, cfg: cfg, logger: log}
	s.routes()

	return s
}

func (s *Server) routes() {
	e := s.echo

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	e.Use(requestLogger(s.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  s.cfg.AllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{echo.HeaderXRequestID},
		MaxAge:        86400,
	}))
	if s.cfg.RateLimit > 0 {
		e.Use(rateLimiter(s.cfg.RateLimit))
	}

	e.GET("/health", s.health)

	api := e.Group("/api/ai")
	api.GET("/status", s.status)
	api.POST("/chat", s.chat)
	api.POST("/translate", s.translate)
	api.POST("/search", s.search)
	api.POST("/extract", s.extract)
	api.POST("/validate/:provider", s.validate)

	e.POST("/api/chat/completion", s.complete)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("listen", s.cfg.Listen))
		if err := s.echo.Start(s.cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.echo.Shutdown(shutdownCtx)
}
