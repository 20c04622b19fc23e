package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/datesense/server/export"
)

// ServiceInfoResponse describes the server defaults and limits.
type ServiceInfoResponse struct {
	Version        string   `json:"version"`
	Mode           string   `json:"mode"`
	Locale         string   `json:"locale"`
	Timezone       string   `json:"timezone"`
	ForwardDate    bool     `json:"forward_date"`
	Strict         bool     `json:"strict"`
	MaxInputLength int      `json:"max_input_length"`
	MaxBatchSize   int      `json:"max_batch_size"`
	Formats        []string `json:"formats"`
}

// GetServiceInfo returns the defaults applied to requests that omit them.
// GET /api/v1/info
func (s *APIV1Service) GetServiceInfo(c echo.Context) error {
	formats := make([]string, 0, len(export.Formats()))
	for _, f := range export.Formats() {
		formats = append(formats, string(f))
	}
	return c.JSON(http.StatusOK, ServiceInfoResponse{
		Version:        s.Profile.Version,
		Mode:           s.Profile.Mode,
		Locale:         s.Profile.Locale,
		Timezone:       s.Profile.Timezone,
		ForwardDate:    s.Profile.ForwardDate,
		Strict:         s.Profile.Strict,
		MaxInputLength: s.Profile.MaxInputLength,
		MaxBatchSize:   s.Profile.MaxBatchSize,
		Formats:        formats,
	})
}
