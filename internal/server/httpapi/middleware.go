package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/labstack/echo/v4"
)

// RequestLogger logs one line per request with method, URI, status and
// duration.
func RequestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			logger.Info(req.Context(), "request",
				"method", req.Method,
				"uri", req.RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start).String(),
			)
			return err
		}
	}
}

// Transactional wraps every request in one unit of work: the handler chain
// below shares a single lazily created session, committed when the handler
// returns nil and rolled back when it returns an error. Handlers that never
// touch the store cost nothing.
func Transactional(sessions *dbx.SessionContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return sessions.RunInTransaction(c.Request().Context(), func(ctx context.Context) error {
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			})
		}
	}
}
