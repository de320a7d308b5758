// Package sandbox is a development backend for the doctor API. It implements the
// prescription endpoints against a Store and serves the calendar, patient record and
// profile from in-memory fixtures.
package sandbox

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Options configures a Server.
type Options struct {
	Store    Store
	Fixtures *Fixtures
	// JWTSecret enables the bearer token check on /api when set.
	JWTSecret []byte
	// Ping backs the health check; nil means always healthy.
	Ping      func(context.Context) error
	StoreName string
	Logger    zerolog.Logger
}

type Server struct {
	echo   *echo.Echo
	logger zerolog.Logger
}

func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Fixtures == nil {
		opts.Fixtures = NewFixtures(time.Now())
	}
	if opts.StoreName == "" {
		opts.StoreName = "memory"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recovery(opts.Logger))
	e.Use(RequestID())
	e.Use(Logger(opts.Logger))

	e.GET("/health", HealthHandler(opts.StoreName, opts.Ping))

	api := e.Group("/api")
	if len(opts.JWTSecret) > 0 {
		api.Use(JWT(opts.JWTSecret))
	}
	NewHandler(opts.Store, opts.Fixtures, opts.Logger).RegisterRoutes(api.Group("/doctor"))

	return &Server{echo: e, logger: opts.Logger}
}

// Handler exposes the router, for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("sandbox listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Run starts the server and shuts it down gracefully once ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down sandbox")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
