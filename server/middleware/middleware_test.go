package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/datesense/plugin/metrics"
	apierrors "github.com/hrygo/datesense/server/internal/errors"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "burst exhausted")
	assert.True(t, rl.Allow("b"), "keys are independent")
	assert.Equal(t, 2, rl.Clients())
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < DefaultBurst; i++ {
		require.True(t, rl.Allow("a"), "request %d", i)
	}
	assert.False(t, rl.Allow("a"))
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	require.True(t, rl.Allow("a"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx, "a"))
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	handler := RateLimit(NewRateLimiter(1, 1))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func() error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	require.NoError(t, call())
	err := call()
	require.Error(t, err)
	assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeRateLimitExceeded))
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	var seen string
	handler := RequestID()(func(c echo.Context) error {
		seen = GetRequestID(c)
		return c.NoContent(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc123")
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, "abc123", seen)
		assert.Equal(t, "abc123", rec.Header().Get(RequestIDHeader))
	})
}

func TestGetRequestID_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "", GetRequestID(c))
}

func TestMetrics(t *testing.T) {
	aggregator := metrics.NewAggregator()
	e := echo.New()
	e.Use(Metrics(aggregator))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/bad", func(c echo.Context) error { return apierrors.InvalidArgument("nope") })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadGateway) })

	for _, path := range []string{"/ok", "/ok", "/bad", "/boom"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	o := aggregator.Overview(time.Now().Add(-time.Hour))
	assert.EqualValues(t, 4, o.RequestCount)
	assert.EqualValues(t, 2, o.SuccessCount)
	require.Contains(t, o.Operations, "GET /ok")
	assert.EqualValues(t, 2, o.Operations["GET /ok"].Count)
	assert.Zero(t, o.Operations["GET /bad"].SuccessRate)
	assert.Zero(t, o.Operations["GET /boom"].SuccessRate)
}
