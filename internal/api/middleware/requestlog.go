package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/storefront/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// probePaths are logged on their first success and on every failure.
var probePaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestLog returns Echo middleware that logs requests with structured fields.
// It generates a request ID if none is provided and propagates it through
// the response header and echo context. Repeated successful probes are not
// logged; failing probes are logged at warn.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			level := slog.LevelInfo

			if _, probe := probePaths[path]; probe {
				if status >= 200 && status < 300 {
					mu.Lock()
					logged := seen[path]
					seen[path] = true
					mu.Unlock()
					if logged {
						return err
					}
				} else {
					level = slog.LevelWarn
				}
			}

			attrs := []any{
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			}
			if traceID := observability.TraceIDFromContext(c.Request().Context()); traceID != "" {
				attrs = append(attrs, "trace_id", traceID)
			}
			log.Log(c.Request().Context(), level, "request", attrs...)

			return err
		}
	}
}
