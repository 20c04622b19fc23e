package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
)

// RequestIDKey is the echo context key holding the request id.
const RequestIDKey = "request_id"

// RequestIDHeader carries the request id in responses, and in requests when
// the caller supplies one.
const RequestIDHeader = echo.HeaderXRequestID

// RequestID assigns every request a short id, echoes it in the response
// header and logs the request when it completes.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(RequestIDHeader)
			if id == "" {
				id = shortuuid.New()
			}
			c.Set(RequestIDKey, id)
			c.Response().Header().Set(RequestIDHeader, id)

			start := time.Now()
			err := next(c)
			slog.Debug("request",
				"request_id", id,
				"method", c.Request().Method,
				"path", c.Path(),
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(RequestIDKey).(string)
	return id
}
