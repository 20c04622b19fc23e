// Package server wires the HTTP API onto an echo server.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/datesense/internal/profile"
	"github.com/hrygo/datesense/plugin/datetext"
	"github.com/hrygo/datesense/plugin/timeout"
	apiv1 "github.com/hrygo/datesense/server/router/api/v1"
)

type Server struct {
	Profile *profile.Profile

	echoServer *echo.Echo
}

// NewServer builds the echo server. When the profile enables caching,
// timeService is wrapped in a result cache purged until ctx is done.
func NewServer(ctx context.Context, profile *profile.Profile, timeService datetext.TimeService) (*Server, error) {
	s := &Server{Profile: profile}

	if profile.CacheSize > 0 {
		cached := datetext.NewCachedTimeService(timeService, profile.CacheSize, profile.CacheTTL)
		go cached.Run(ctx, profile.CacheTTL)
		timeService = cached
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.HTTPErrorHandler = apiv1.HTTPErrorHandler
	echoServer.Use(middleware.Recover())
	echoServer.Server.ReadHeaderTimeout = timeout.RequestTimeout
	s.echoServer = echoServer

	apiv1.NewAPIV1Service(profile, timeService).RegisterRoutes(echoServer)
	return s, nil
}

// Handler exposes the routes, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the profile address and serves until the listener fails
// or Shutdown is called.
func (s *Server) Start(_ context.Context) error {
	listener, err := net.Listen("tcp", s.Profile.Address())
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.Profile.Address())
	}
	s.echoServer.Listener = listener

	slog.Info("datesense server started", "address", listener.Addr().String(), "mode", s.Profile.Mode, "version", s.Profile.Version)
	if err := s.echoServer.Start(s.Profile.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, timeout.ShutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	slog.Info("server stopped properly", "at", time.Now().Format(time.RFC3339))
}
