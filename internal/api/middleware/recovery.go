package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/storefront/internal/metrics"
	"github.com/donaldgifford/storefront/internal/observability"
)

const (
	stackSize          = 8 << 10
	problemContentType = "application/problem+json"
)

// problem mirrors the error body huma writes so clients parse one shape.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Recovery returns Echo middleware that turns a handler panic into a 500
// problem response. The panic is logged with its stack, request ID and trace
// ID, and counted by route.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				buf := make([]byte, stackSize)
				buf = buf[:runtime.Stack(buf, false)]

				req := c.Request()
				route := c.Path()
				if route == "" {
					route = req.URL.Path
				}
				metrics.HTTPPanicsTotal.WithLabelValues(route).Inc()

				attrs := []any{
					"error", fmt.Sprint(r),
					"method", req.Method,
					"path", req.URL.Path,
					"stack", string(buf),
				}
				if id, ok := c.Get("request_id").(string); ok && id != "" {
					attrs = append(attrs, "request_id", id)
				}
				if traceID := observability.TraceIDFromContext(req.Context()); traceID != "" {
					attrs = append(attrs, "trace_id", traceID)
				}
				log.ErrorContext(req.Context(), "panic recovered", attrs...)

				if c.Response().Committed {
					return
				}
				body, _ := json.Marshal(problem{
					Title:  http.StatusText(http.StatusInternalServerError),
					Status: http.StatusInternalServerError,
					Detail: "the request could not be completed",
				})
				err = c.Blob(http.StatusInternalServerError, problemContentType, body)
			}()
			return next(c)
		}
	}
}
