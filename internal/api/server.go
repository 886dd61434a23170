package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/arr/conncheck"
	"github.com/requesterr/requesterr/internal/config"
	"github.com/requesterr/requesterr/internal/health"
	"github.com/requesterr/requesterr/internal/indexer"
	"github.com/requesterr/requesterr/internal/reconcile"
	"github.com/requesterr/requesterr/internal/requests"
	"github.com/requesterr/requesterr/internal/scheduler"
	"github.com/requesterr/requesterr/internal/services"
	"github.com/requesterr/requesterr/internal/websocket"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Requests  *requests.Service
	Engine    *reconcile.Engine
	Directory *services.Directory
	Indexer   *indexer.Service
	Health    *health.Service
	Scheduler *scheduler.Scheduler
	Hub       *websocket.Hub
}

// Server handles HTTP requests for the Requesterr API.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	cfg    *config.Config
	logger zerolog.Logger
}

// NewServer creates a new API server instance.
func NewServer(deps Deps, cfg *config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		deps:   deps,
		cfg:    cfg,
		logger: logger.With().Str("component", "api").Logger(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)

	requests.NewHandlers(s.deps.Requests).RegisterRoutes(api.Group("/requests"))
	reconcile.NewHandlers(s.deps.Engine).RegisterRoutes(api)
	tester := func(ctx context.Context, inst *services.Instance) error {
		return conncheck.Run(ctx, inst, &s.logger)
	}
	services.NewHandlers(s.deps.Directory, tester).RegisterRoutes(api.Group("/services"))
	indexer.NewHandlers(s.deps.Indexer).RegisterRoutes(api.Group("/indexers"))
	health.NewHandlers(s.deps.Health).RegisterRoutes(api.Group("/health"))

	api.GET("/tasks", s.listTasks)
	api.POST("/tasks/:id/run", s.runTask)

	if s.deps.Hub != nil {
		s.echo.GET("/ws", s.deps.Hub.HandleWebSocket)
	}
}

// Start begins serving on the given address. Blocks until Shutdown.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router. Used in tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version": config.Version,
	})
}

func (s *Server) listTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Scheduler.ListTasks())
}

func (s *Server) runTask(c echo.Context) error {
	if err := s.deps.Scheduler.RunNow(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}
