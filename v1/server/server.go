package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/metrics"
)

// Server is the HTTP API.
type Server struct {
	echo    *echo.Echo
	cfg     Config
	docs    Documents
	chats   Chats
	logger  logger.Logger
	metrics metrics.MetricsCollector
}

// New builds the echo instance and registers every route. m may be nil.
func New(cfg Config, docs Documents, chats Chats, log logger.Logger, m metrics.MetricsCollector) (*Server, error) {
	if docs == nil || chats == nil {
		return nil, errors.New("server: document and chat services are required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	s := &Server{echo: e, cfg: cfg, docs: docs, chats: chats, logger: log, metrics: m}
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.RequestID())
	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1", requireUser)
	v1.GET("/status", s.handleStatus)

	chats := v1.Group("/chat")
	chats.POST("", s.handleChat)
	chats.GET("/sessions", s.handleListSessions)
	chats.GET("/sessions/:id/messages", s.handleListMessages)
	chats.DELETE("/sessions/:id", s.handleDeleteSession)
	chats.GET("/collection-info", s.handleCollectionInfo)

	docs := v1.Group("/documents")
	docs.POST("/text", s.handleUploadText)
	docs.GET("", s.handleListDocuments)
	docs.GET("/:id", s.handleGetDocument)
	docs.DELETE("/:id", s.handleDeleteDocument)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	s.logger.Info("Starting HTTP server", nil, map[string]interface{}{"addr": addr})
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("[Server] failed to listen on %s: %w", addr, err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", nil)
	return s.echo.Shutdown(ctx)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id "+strconv.Quote(c.Param("id")))
	}
	return id, nil
}
