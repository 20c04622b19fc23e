package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"

	"github.com/hrygo/datesense/plugin/datetext"
	"github.com/hrygo/datesense/server/export"
	apierrors "github.com/hrygo/datesense/server/internal/errors"
	"github.com/hrygo/datesense/server/internal/observability"
	"github.com/hrygo/datesense/server/middleware"
	"github.com/hrygo/datesense/server/service/parse"
	"github.com/hrygo/datesense/server/timezone"
)

// ParseOptions are the request fields shared by single and batch parsing.
// Absent fields take the server defaults.
type ParseOptions struct {
	// Reference is the instant relative expressions are anchored at, in any
	// common layout; empty means now.
	Reference   string `json:"reference,omitempty"`
	Locale      string `json:"locale,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	ForwardDate *bool  `json:"forward_date,omitempty"`
	Strict      *bool  `json:"strict,omitempty"`
	Filter      string `json:"filter,omitempty"`
}

// ParseRequest is the body of POST /api/v1/parse.
type ParseRequest struct {
	ParseOptions
	Text     string `json:"text"`
	Markdown bool   `json:"markdown,omitempty"`
}

// ParseResponse is the reply to POST /api/v1/parse.
type ParseResponse struct {
	RequestID string        `json:"request_id"`
	Reference time.Time     `json:"reference"`
	Results   []parse.Match `json:"results"`
}

// BatchRequest is the body of POST /api/v1/parse:batch.
type BatchRequest struct {
	ParseOptions
	Documents []parse.Document `json:"documents"`
}

// BatchResponse is the reply to POST /api/v1/parse:batch.
type BatchResponse struct {
	RequestID string                 `json:"request_id"`
	Reference time.Time              `json:"reference"`
	Documents []parse.DocumentResult `json:"documents"`
}

// HealthResponse is the reply to GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Parse finds the date expressions in one text.
// POST /api/v1/parse
func (s *APIV1Service) Parse(c echo.Context) error {
	var req ParseRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	if req.Text == "" {
		return apierrors.InvalidArgument("text is required")
	}
	format, err := requestFormat(c)
	if err != nil {
		return err
	}
	parseReq, err := s.buildRequest(req.ParseOptions)
	if err != nil {
		return err
	}

	requestID := middleware.GetRequestID(c)
	reqCtx := observability.NewRequestContext(slog.Default(), requestID, "parse")
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
	doc := parse.Document{ID: requestID, Text: req.Text, Markdown: req.Markdown}
	matches, err := s.ParseService.ParseDocument(ctx, doc, parseReq)
	if err != nil {
		return err
	}
	reqCtx.Debug("parse completed",
		slog.Int(observability.LogFieldInputLen, len(req.Text)),
		slog.Int(observability.LogFieldMatches, len(matches)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
	)

	if format != export.FormatJSON {
		return encode(c, format, []parse.DocumentResult{{ID: doc.ID, Matches: matches}})
	}
	return c.JSON(http.StatusOK, ParseResponse{
		RequestID: requestID,
		Reference: parseReq.Reference,
		Results:   matches,
	})
}

// ParseBatch parses many documents with shared options.
// POST /api/v1/parse:batch
func (s *APIV1Service) ParseBatch(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("malformed request body")
	}
	format, err := requestFormat(c)
	if err != nil {
		return err
	}
	parseReq, err := s.buildRequest(req.ParseOptions)
	if err != nil {
		return err
	}

	for i := range req.Documents {
		if req.Documents[i].ID == "" {
			req.Documents[i].ID = documentID(i)
		}
	}
	reqCtx := observability.NewRequestContext(slog.Default(), middleware.GetRequestID(c), "parse:batch")
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
	results, err := s.ParseService.ParseBatch(ctx, req.Documents, parseReq)
	if err != nil {
		return err
	}
	reqCtx.Debug("batch completed",
		slog.Int("documents", len(results)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
	)

	if format != export.FormatJSON {
		return encode(c, format, results)
	}
	return c.JSON(http.StatusOK, BatchResponse{
		RequestID: middleware.GetRequestID(c),
		Reference: parseReq.Reference,
		Documents: results,
	})
}

// Healthz reports that the server is up.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.Profile.Version})
}

// buildRequest fills opts from the server defaults and validates them.
func (s *APIV1Service) buildRequest(opts ParseOptions) (parse.Request, error) {
	tz := opts.Timezone
	if tz == "" {
		tz = s.Profile.Timezone
	}
	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		return parse.Request{}, apierrors.InvalidArgumentf("invalid timezone %q", tz)
	}
	reference, err := timezone.ParseReference(opts.Reference, loc)
	if err != nil {
		return parse.Request{}, apierrors.InvalidArgumentf("invalid reference %q", opts.Reference)
	}

	locale := opts.Locale
	if locale == "" {
		locale = s.Profile.Locale
	}
	if _, err := language.Parse(locale); err != nil {
		return parse.Request{}, apierrors.InvalidArgumentf("invalid locale %q", locale)
	}

	parseOpts := datetext.Options{
		Locale:      locale,
		Strict:      s.Profile.Strict,
		ForwardDate: s.Profile.ForwardDate,
	}
	if opts.Strict != nil {
		parseOpts.Strict = *opts.Strict
	}
	if opts.ForwardDate != nil {
		parseOpts.ForwardDate = *opts.ForwardDate
	}

	return parse.Request{Reference: reference, Options: parseOpts, Filter: opts.Filter}, nil
}

func requestFormat(c echo.Context) (export.Format, error) {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return "", apierrors.InvalidArgument(err.Error())
	}
	return format, nil
}

func encode(c echo.Context, format export.Format, results []parse.DocumentResult) error {
	encoder, err := export.NewEncoder(format)
	if err != nil {
		return apierrors.InvalidArgument(err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentType, format.ContentType())
	c.Response().WriteHeader(http.StatusOK)
	return encoder.Encode(c.Response(), results)
}

func documentID(i int) string {
	return "doc-" + strconv.Itoa(i)
}
