// Package server exposes the producer's snapshot text over HTTP, the userspace
// counterpart of the /proc/read_system_data entry.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/The-Promised-Neverland/sysdata/internal/producer"
	"github.com/The-Promised-Neverland/sysdata/pkg/logger"
)

// SnapshotPath is the route serving snapshot text.
const SnapshotPath = "/read_system_data"

type Server struct {
	echo     *echo.Echo
	addr     string
	producer *producer.Producer
}

func New(p *producer.Producer, addr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)

	s := &Server{echo: e, addr: addr, producer: p}
	e.GET(SnapshotPath, s.snapshotHandler)
	e.GET("/healthz", healthHandler)
	return s
}

// Handler returns the router, for mounting or tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logger.Log.Info("Serving snapshot text", "addr", s.addr, "path", SnapshotPath)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) snapshotHandler(c echo.Context) error {
	logger.Log.Debug("Snapshot request received", "remote_addr", c.Request().RemoteAddr)
	text := s.producer.Render(c.Request().Context())
	return c.String(http.StatusOK, text)
}

func healthHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
