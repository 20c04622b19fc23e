package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/datesense/plugin/metrics"
	apierrors "github.com/hrygo/datesense/server/internal/errors"
)

// Metrics records every request on aggregator under "METHOD route".
// A request succeeds when it ends with a status below 400.
func Metrics(aggregator *metrics.Aggregator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := responseStatus(c, err)
			aggregator.Record(c.Request().Method+" "+c.Path(), time.Since(start), status < http.StatusBadRequest)
			return err
		}
	}
}

// responseStatus returns the status the error handler will write for err.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	if apiErr, ok := apierrors.As(err); ok {
		return apiErr.HTTPStatus()
	}
	if httpErr, ok := err.(*echo.HTTPError); ok {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}
