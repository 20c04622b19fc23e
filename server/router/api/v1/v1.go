package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/datesense/internal/profile"
	"github.com/hrygo/datesense/plugin/datetext"
	"github.com/hrygo/datesense/plugin/metrics"
	"github.com/hrygo/datesense/plugin/timeout"
	apierrors "github.com/hrygo/datesense/server/internal/errors"
	"github.com/hrygo/datesense/server/middleware"
	"github.com/hrygo/datesense/server/service/parse"
)

type APIV1Service struct {
	Profile      *profile.Profile
	ParseService *parse.Service
	Metrics      *metrics.Aggregator

	// limiter is nil when rate limiting is disabled.
	limiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, timeService datetext.TimeService) *APIV1Service {
	service := &APIV1Service{
		Profile: profile,
		ParseService: parse.NewService(timeService, parse.Config{
			Concurrency:    profile.Concurrency,
			MaxInputLength: profile.MaxInputLength,
			MaxBatchSize:   profile.MaxBatchSize,
			RequestTimeout: timeout.RequestTimeout,
			BatchTimeout:   timeout.BatchTimeout,
			ContextChars:   profile.ContextChars,
			Location:       profile.Location(),
		}),
		Metrics: metrics.NewAggregator(),
	}
	if profile.RateLimit > 0 {
		service.limiter = middleware.NewRateLimiter(profile.RateLimit, profile.RateBurst)
	}
	return service
}

// RegisterRoutes mounts the API on echoServer.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.Healthz)

	apiGroup := echoServer.Group("/api/v1")
	apiGroup.Use(middleware.RequestID())
	apiGroup.Use(middleware.Metrics(s.Metrics))
	apiGroup.Use(echomiddleware.CORS())
	if s.limiter != nil {
		apiGroup.Use(middleware.RateLimit(s.limiter))
	}
	apiGroup.GET("/info", s.GetServiceInfo)
	apiGroup.GET("/metrics", s.GetMetricsOverview)
	apiGroup.POST("/parse", s.Parse)
	apiGroup.POST("/parse\\:batch", s.ParseBatch)
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

// HTTPErrorHandler renders handler errors as ErrorResponse.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var resp ErrorResponse
	status := http.StatusInternalServerError
	if apiErr, ok := apierrors.As(err); ok {
		resp = ErrorResponse{Code: apiErr.Code, Message: apiErr.Message}
		status = apiErr.HTTPStatus()
	} else if httpErr, ok := err.(*echo.HTTPError); ok {
		status = httpErr.Code
		resp = ErrorResponse{Code: apierrors.FromHTTPStatus(status), Message: http.StatusText(status)}
		if msg, ok := httpErr.Message.(string); ok {
			resp.Message = msg
		}
	} else {
		resp = ErrorResponse{Code: apierrors.ErrCodeInternal, Message: "internal error"}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("api request failed", "request_id", middleware.GetRequestID(c), "path", c.Path(), "error", err)
	} else {
		slog.Debug("api request rejected", "request_id", middleware.GetRequestID(c), "code", resp.Code, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, resp)
}
