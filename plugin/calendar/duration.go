package calendar

import (
	"strings"
	"time"
)

// Unit is a calendar unit of a Duration.
type Unit string

const (
	UnitYear        Unit = "year"
	UnitQuarter     Unit = "quarter"
	UnitMonth       Unit = "month"
	UnitWeek        Unit = "week"
	UnitDay         Unit = "day"
	UnitHour        Unit = "hour"
	UnitMinute      Unit = "minute"
	UnitSecond      Unit = "second"
	UnitMillisecond Unit = "millisecond"
)

// ParseUnit accepts singular, plural and common short forms.
func ParseUnit(s string) (Unit, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "ms" {
		return UnitMillisecond, true
	}
	switch strings.TrimSuffix(s, "s") {
	case "year", "yr", "y":
		return UnitYear, true
	case "quarter", "qtr", "q":
		return UnitQuarter, true
	case "month", "mo":
		return UnitMonth, true
	case "week", "wk", "w":
		return UnitWeek, true
	case "day", "d":
		return UnitDay, true
	case "hour", "hr", "h":
		return UnitHour, true
	case "minute", "min":
		return UnitMinute, true
	case "second", "sec":
		return UnitSecond, true
	case "millisecond", "msec":
		return UnitMillisecond, true
	}
	return "", false
}

// Duration is a signed offset in calendar units. A unit present with a zero
// value still counts as mentioned.
type Duration map[Unit]int

// Reverse negates every unit.
func (d Duration) Reverse() Duration {
	out := make(Duration, len(d))
	for u, n := range d {
		out[u] = -n
	}
	return out
}

func (d Duration) has(units ...Unit) bool {
	for _, u := range units {
		if _, ok := d[u]; ok {
			return true
		}
	}
	return false
}

// AddTo shifts t by d in one calendar step. Years, quarters, months, weeks
// and days go through time.AddDate, so Jan 31 + 1 month overflows into
// March; clock units are added as elapsed time afterwards.
func (d Duration) AddTo(t time.Time) time.Time {
	years := d[UnitYear]
	months := d[UnitQuarter]*3 + d[UnitMonth]
	days := d[UnitWeek]*7 + d[UnitDay]
	t = t.AddDate(years, months, days)

	return t.Add(time.Duration(d[UnitHour])*time.Hour +
		time.Duration(d[UnitMinute])*time.Minute +
		time.Duration(d[UnitSecond])*time.Second +
		time.Duration(d[UnitMillisecond])*time.Millisecond)
}

// ApplyDuration returns a copy of c shifted by d and re-expressed as
// implied fields. The base instant is c with its gaps filled from ref.
//
// Day, month and year are implied together only when d mentions a date
// unit; hour, minute and second only when d mentions a clock unit. Fields
// already set in c are never overwritten. The result is anchored, so the
// forward-date policy never moves it.
func ApplyDuration(c *Components, ref time.Time, d Duration) *Components {
	out := c.Clone().Anchor()

	base := c.Clone()
	loc := ref.Location()
	if offset, ok := base.Get(FieldTimezoneOffset); ok {
		loc = time.FixedZone("", offset*60)
	}
	refLocal := ref.In(loc)
	ImplySimilarDate(base, refLocal)
	ImplySimilarTime(base, refLocal)

	shifted := d.AddTo(instant(base, loc))

	if d.has(UnitDay, UnitWeek, UnitMonth, UnitQuarter, UnitYear) {
		out.Imply(FieldDay, shifted.Day())
		out.Imply(FieldMonth, int(shifted.Month()))
		out.Imply(FieldYear, shifted.Year())
	}
	if d.has(UnitHour, UnitMinute, UnitSecond) {
		out.Imply(FieldSecond, shifted.Second())
		out.Imply(FieldMinute, shifted.Minute())
		out.Imply(FieldHour, shifted.Hour())
	}
	return out
}
