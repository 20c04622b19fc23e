// Package datetext finds date and time expressions in free text and resolves
// them against a reference instant.
//
// The extractors here only locate candidates and classify their tokens; all
// calendar decisions are made by the calendar package.
package datetext

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/datesense/plugin/calendar"
)

// ErrNoMatch is returned by ParseDate when the text holds no date expression.
var ErrNoMatch = errors.New("no date expression found")

// ErrInputTooLong is returned when the text exceeds the service's input limit.
var ErrInputTooLong = errors.New("input too long")

// TimeService defines the date extraction service interface.
// Consumers: the HTTP API, the batch service and the CLI.
type TimeService interface {
	// Parse returns every date expression in text, in input order.
	// An empty slice with a nil error means nothing was found.
	Parse(ctx context.Context, text string, reference time.Time, opts Options) ([]Result, error)

	// ParseDate returns the start of the first expression in text,
	// or ErrNoMatch.
	ParseDate(ctx context.Context, text string, reference time.Time, opts Options) (time.Time, error)
}

// Options configures one Parse call.
type Options struct {
	// Locale is a BCP 47 tag that decides the numeric date order.
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
	// Strict accepts only complete calendar dates and disables casual
	// keywords and relative durations.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
	// ForwardDate moves dates with an inferred year to on or after the reference.
	ForwardDate bool `json:"forward_date,omitempty" yaml:"forward_date,omitempty"`
}

// TimeRange represents a time range.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Result is one expression found in the text.
type Result struct {
	calendar.Span
	Start calendar.ResolvedInstant
	// End is nil unless the expression is a range.
	End *calendar.ResolvedInstant
}

// IsRange reports whether the result has an end.
func (r Result) IsRange() bool {
	return r.End != nil
}

// TimeRange returns the result as a range; a single instant has End == Start.
func (r Result) TimeRange() TimeRange {
	tr := TimeRange{Start: r.Start.Time, End: r.Start.Time}
	if r.End != nil {
		tr.End = r.End.Time
	}
	return tr
}

// Tags returns the union of the start and end provenance tags, sorted.
func (r Result) Tags() []string {
	c := r.Start.Components()
	if r.End != nil {
		c.AddTags(r.End.Tags()...)
	}
	return c.Tags()
}

// HasTag reports whether either end carries tag.
func (r Result) HasTag(tag string) bool {
	return r.Start.HasTag(tag) || (r.End != nil && r.End.HasTag(tag))
}
