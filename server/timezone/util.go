// Package timezone provides timezone utilities for the datesense service.
//
// This package handles IANA zone lookup, UTC offset parsing and formatting,
// and reference instant parsing for the outer layers. The calendar engine
// itself only ever sees a signed offset in minutes.
package timezone

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Default location constants
var (
	// UTC is the coordinated universal time timezone
	UTC = time.UTC
)

// MaxOffsetMinutes bounds a UTC offset; real zones span UTC-12..UTC+14.
const MaxOffsetMinutes = 14 * 60

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/London").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	if minutes, err := ParseOffset(tz); err == nil {
		return FixedZone(minutes), nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// ParseOffset parses a UTC offset into signed minutes.
//
// Accepted forms: "Z", "UTC", "GMT", "+0200", "+02:00", "-0530", "+2",
// "GMT+2", "UTC-05:30".
func ParseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	switch upper {
	case "Z", "UTC", "GMT":
		return 0, nil
	}
	for _, prefix := range []string{"UTC", "GMT"} {
		if strings.HasPrefix(upper, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}

	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, fmt.Errorf("invalid utc offset %q", s)
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	body := strings.Replace(s[1:], ":", "", 1)

	var hours, minutes int
	var err error
	switch len(body) {
	case 1, 2:
		hours, err = strconv.Atoi(body)
	case 3:
		hours, err = strconv.Atoi(body[:1])
		if err == nil {
			minutes, err = strconv.Atoi(body[1:])
		}
	case 4:
		hours, err = strconv.Atoi(body[:2])
		if err == nil {
			minutes, err = strconv.Atoi(body[2:])
		}
	default:
		return 0, fmt.Errorf("invalid utc offset %q", s)
	}
	if err != nil || strings.ContainsAny(body, "+-") {
		return 0, fmt.Errorf("invalid utc offset %q", s)
	}
	if minutes > 59 {
		return 0, fmt.Errorf("invalid utc offset %q: minutes out of range", s)
	}

	total := sign * (hours*60 + minutes)
	if total < -MaxOffsetMinutes || total > MaxOffsetMinutes {
		return 0, fmt.Errorf("utc offset %q out of range", s)
	}
	return total, nil
}

// FormatOffset renders signed minutes as "+02:00".
func FormatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}

// FixedZone returns a location with a constant offset, named like "UTC+02:00".
func FixedZone(minutes int) *time.Location {
	if minutes == 0 {
		return UTC
	}
	return time.FixedZone("UTC"+FormatOffset(minutes), minutes*60)
}

// OffsetMinutes returns the UTC offset of t in minutes.
func OffsetMinutes(t time.Time) int {
	_, secs := t.Zone()
	return secs / 60
}

// ParseReference parses a caller supplied reference instant. Any layout
// dateparse understands is accepted; values without an explicit zone are
// read in loc. An empty string yields now.
func ParseReference(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = UTC
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return NowInTimezone(loc), nil
	}

	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference %q: %w", s, err)
	}
	return t, nil
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Now().In(tz)
}

// Common timezone identifiers used by tests and defaults.
const (
	TimezoneUTC             = "UTC"
	TimezoneAmericaNewYork  = "America/New_York"
	TimezoneEuropeLondon    = "Europe/London"
	TimezoneAsiaShanghai    = "Asia/Shanghai"
	TimezoneAustraliaSydney = "Australia/Sydney"
)
