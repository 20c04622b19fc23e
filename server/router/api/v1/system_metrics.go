package v1

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/datesense/plugin/metrics"
	apierrors "github.com/hrygo/datesense/server/internal/errors"
)

// MetricsOverviewResponse represents the overview response of request metrics.
type MetricsOverviewResponse struct {
	TotalRequests int64              `json:"total_requests"`
	SuccessRate   float64            `json:"success_rate"`
	AvgLatencyMs  int64              `json:"avg_latency_ms"`
	P50LatencyMs  int64              `json:"p50_latency_ms"`
	P95LatencyMs  int64              `json:"p95_latency_ms"`
	ErrorCount    int64              `json:"error_count"`
	TimeRange     string             `json:"time_range"`
	Operations    []OperationMetrics `json:"operations"`
}

// OperationMetrics is the per-route part of MetricsOverviewResponse.
type OperationMetrics struct {
	Operation    string  `json:"operation"`
	Count        int64   `json:"count"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMs int64   `json:"avg_latency_ms"`
}

// GetMetricsOverview returns the request metrics overview.
// GET /api/v1/metrics?range=1h|24h|7d|30d
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	timeRange := c.QueryParam("range")
	if timeRange == "" {
		timeRange = "24h"
	}
	since, err := parseTimeRange(timeRange, time.Now())
	if err != nil {
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, err.Error())
	}
	return c.JSON(http.StatusOK, newMetricsOverviewResponse(s.Metrics.Overview(since), timeRange))
}

func newMetricsOverviewResponse(o *metrics.Overview, timeRange string) MetricsOverviewResponse {
	resp := MetricsOverviewResponse{
		TotalRequests: o.RequestCount,
		SuccessRate:   o.SuccessRate(),
		AvgLatencyMs:  o.AvgLatency.Milliseconds(),
		P50LatencyMs:  o.LatencyP50.Milliseconds(),
		P95LatencyMs:  o.LatencyP95.Milliseconds(),
		ErrorCount:    o.ErrorCount(),
		TimeRange:     timeRange,
		Operations:    make([]OperationMetrics, 0, len(o.Operations)),
	}
	for name, stat := range o.Operations {
		resp.Operations = append(resp.Operations, OperationMetrics{
			Operation:    name,
			Count:        stat.Count,
			SuccessRate:  stat.SuccessRate,
			AvgLatencyMs: stat.AvgLatency.Milliseconds(),
		})
	}
	sort.Slice(resp.Operations, func(i, j int) bool {
		return resp.Operations[i].Operation < resp.Operations[j].Operation
	})
	return resp
}

// parseTimeRange parses time range string and returns the start time
func parseTimeRange(timeRange string, now time.Time) (time.Time, error) {
	switch timeRange {
	case "1h":
		return now.Add(-1 * time.Hour), nil
	case "24h":
		return now.Add(-24 * time.Hour), nil
	case "7d":
		return now.Add(-7 * 24 * time.Hour), nil
	case "30d":
		return now.Add(-30 * 24 * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("invalid time range: %s (valid: 1h, 24h, 7d, 30d)", timeRange)
	}
}
