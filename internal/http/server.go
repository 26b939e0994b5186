// Package http provides the HTTP API for repotext.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repotext/internal/acquire"
	"github.com/fyrsmithlabs/repotext/internal/intake"
	"github.com/fyrsmithlabs/repotext/internal/logstore"
)

// Acquirer runs one repository acquisition.
type Acquirer interface {
	Acquire(ctx context.Context, id intake.Identity, token string) (acquire.Result, error)
}

// Server provides HTTP endpoints for repotext.
type Server struct {
	echo     *echo.Echo
	acquirer Acquirer
	store    logstore.Store
	logger   *zap.Logger
	config   *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(acquirer Acquirer, store logstore.Store, logger *zap.Logger, cfg *Config) (*Server, error) {
	if acquirer == nil {
		return nil, fmt.Errorf("acquirer cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		acquirer: acquirer,
		store:    store,
		logger:   logger,
		config:   cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/convert", s.handleConvert)
	v1.GET("/logs", s.handleLogs)
}

// ConvertRequest is the request body for POST /api/v1/convert.
type ConvertRequest struct {
	RepoURL string `json:"repo_url"`
	Token   string `json:"token,omitempty"`
}

// ConvertResponse is the response body for POST /api/v1/convert.
type ConvertResponse struct {
	Content   string `json:"content"`
	FileCount int    `json:"file_count"`
	LineCount int    `json:"line_count"`
}

// LogsResponse is the response body for GET /api/v1/logs.
type LogsResponse struct {
	Entries []logstore.Entry `json:"entries"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleConvert acquires a repository and returns the text artifact.
// Intake rejections are the only 4xx outcome; acquisition itself always
// produces a well-formed result.
func (s *Server) handleConvert(c echo.Context) error {
	var req ConvertRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid convert request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.RepoURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "repo_url field is required")
	}

	id, err := intake.ParseRepoURL(req.RepoURL)
	if err != nil {
		s.logger.Debug("repository URL rejected",
			zap.String("repo_url", req.RepoURL),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.acquirer.Acquire(c.Request().Context(), id, req.Token)
	if err != nil {
		// Only the client going away mid-request lands here.
		if errors.Is(err, context.Canceled) {
			return err
		}
		s.logger.Error("acquisition failed unexpectedly", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "acquisition failed")
	}

	return c.JSON(http.StatusOK, ConvertResponse{
		Content:   result.Content,
		FileCount: result.FileCount,
		LineCount: result.LineCount,
	})
}

// handleLogs returns recent processing log entries, newest first.
func (s *Server) handleLogs(c echo.Context) error {
	if s.store == nil {
		return c.JSON(http.StatusOK, LogsResponse{Entries: []logstore.Entry{}})
	}

	entries, err := s.store.Recent(c.Request().Context(), 50)
	if err != nil {
		s.logger.Error("reading processing log failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "log store unavailable")
	}
	if entries == nil {
		entries = []logstore.Entry{}
	}

	return c.JSON(http.StatusOK, LogsResponse{Entries: entries})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
