package datetext

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datesense/plugin/timeout"
	"github.com/hrygo/datesense/server/timezone"
)

// Service implements TimeService with rule-based extraction.
type Service struct {
	defaultLocale   string
	defaultTimezone *time.Location
	maxInputLength  int
	now             func() time.Time
}

// NewService creates a new time service. An empty or invalid timezone
// falls back to UTC.
func NewService(defaultLocale, defaultTimezone string) *Service {
	loc, err := timezone.ParseTimezone(defaultTimezone)
	if err != nil {
		slog.Warn("datetext: invalid default timezone, using UTC", "timezone", defaultTimezone, "error", err)
	}
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	return &Service{
		defaultLocale:   defaultLocale,
		defaultTimezone: loc,
		maxInputLength:  timeout.MaxInputLength,
		now:             time.Now,
	}
}

// WithMaxInputLength returns a copy of s that rejects longer inputs.
func (s *Service) WithMaxInputLength(n int) *Service {
	cp := *s
	cp.maxInputLength = n
	return &cp
}

// Location returns the zone used for a zero reference.
func (s *Service) Location() *time.Location {
	return s.defaultTimezone
}

// Parse returns every date expression in text. A zero reference means now
// in the service's default timezone; an empty locale means the default locale.
func (s *Service) Parse(ctx context.Context, text string, reference time.Time, opts Options) ([]Result, error) {
	if s.maxInputLength > 0 && len(text) > s.maxInputLength {
		return nil, errors.Wrapf(ErrInputTooLong, "%d bytes exceeds limit of %d", len(text), s.maxInputLength)
	}
	if reference.IsZero() {
		reference = s.now().In(s.defaultTimezone)
	}
	if opts.Locale == "" {
		opts.Locale = s.defaultLocale
	}

	results, err := NewParser(opts).Parse(ctx, text, reference)
	if err != nil {
		return nil, errors.Wrap(err, "parse cancelled")
	}
	return results, nil
}

// ParseDate returns the start of the first expression in text.
func (s *Service) ParseDate(ctx context.Context, text string, reference time.Time, opts Options) (time.Time, error) {
	results, err := s.Parse(ctx, text, reference, opts)
	if err != nil {
		return time.Time{}, err
	}
	if len(results) == 0 {
		return time.Time{}, ErrNoMatch
	}
	return results[0].Start.Time, nil
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)
