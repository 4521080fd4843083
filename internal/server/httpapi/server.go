package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/labstack/echo/v4"
)

// Server binds routes and middleware to an Echo instance and runs it until
// the context is cancelled.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger logging.Logger
}

func NewServer(addr string, logger logging.Logger, sessions *dbx.SessionContext, service AuthService) *Server {
	return &Server{echo: newRouter(logger, sessions, service), addr: addr, logger: logger}
}

func newRouter(logger logging.Logger, sessions *dbx.SessionContext, service AuthService) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(RequestLogger(logger))
	e.Use(Transactional(sessions))

	h := NewAuthHandler(service)

	e.GET("/healthz", Health)

	g := e.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)

	return e
}

// Run starts the HTTP listener and shuts it down gracefully when ctx is
// cancelled. In-flight units of work still release their sessions through
// the transactional middleware on the shutdown path.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
