package calendar

import (
	"fmt"
	"time"
)

const (
	// defaultHour is the hour a set without any clock information resolves to.
	defaultHour = 12

	// maxOffsetMinutes bounds |utcOffsetMinutes|; real zones span UTC-12..UTC+14.
	maxOffsetMinutes = 14 * 60

	// maxForwardYears covers the longest gap between two February 29ths.
	maxForwardYears = 8
)

// Options controls how a set is resolved against its reference.
type Options struct {
	// ForwardDate moves a result whose year was inferred to on or after the
	// reference instant.
	ForwardDate bool
}

// ResolvedInstant is the immutable result of resolving a Components set.
type ResolvedInstant struct {
	// Time is the concrete instant. Its location is the fixed zone of the
	// stated UTC offset, or the reference's location when none was stated.
	Time time.Time

	components *Components
}

// Get returns the resolved value of f.
func (r ResolvedInstant) Get(f Field) (int, bool) {
	if r.components == nil {
		return 0, false
	}
	return r.components.Get(f)
}

// IsCertain reports whether f was stated by the source text.
func (r ResolvedInstant) IsCertain(f Field) bool {
	return r.components != nil && r.components.IsCertain(f)
}

// Status returns the confidence of f after resolution.
func (r ResolvedInstant) Status(f Field) Status {
	if r.components == nil {
		return Unset
	}
	return r.components.Status(f)
}

// Tags returns the provenance tags of the originating set.
func (r ResolvedInstant) Tags() []string {
	if r.components == nil {
		return nil
	}
	return r.components.Tags()
}

// HasTag reports whether the originating set carries tag.
func (r ResolvedInstant) HasTag(tag string) bool {
	return r.components != nil && r.components.HasTag(tag)
}

// Components returns a copy of the resolved field set.
func (r ResolvedInstant) Components() *Components {
	if r.components == nil {
		return NewComponents()
	}
	return r.components.Clone()
}

// Resolve turns set into a concrete instant anchored at ref.
//
// Unset date fields are implied from ref as a group. Unset clock fields are
// implied as zero, except that a set with no clock information at all lands
// on 12:00. The meridiem is implied from the 24-hour value. With
// opts.ForwardDate, a result before ref whose year was not stated is moved
// forward by the largest unit the text left out; a stated month and day
// that do not exist in the reference year (February 29) take the next year
// where they do. Anchored sets are never moved. set is never modified.
func Resolve(set *Components, ref time.Time, opts Options) (ResolvedInstant, error) {
	c := set.Clone()

	loc := ref.Location()
	if offset, ok := c.Get(FieldTimezoneOffset); ok {
		if offset < -maxOffsetMinutes || offset > maxOffsetMinutes {
			return ResolvedInstant{}, InvalidDate(fmt.Sprintf("utc offset %d minutes out of range", offset)).
				WithContext("components", c.String())
		}
		loc = time.FixedZone("", offset*60)
	}
	refLocal := ref.In(loc)

	if !c.IsSet(FieldYear) || !c.IsSet(FieldMonth) || !c.IsSet(FieldDay) {
		ImplySimilarDate(c, refLocal)
	}

	if !c.hasTimeOfDay() {
		c.Imply(FieldHour, defaultHour)
	}
	c.Imply(FieldHour, 0)
	c.Imply(FieldMinute, 0)
	c.Imply(FieldSecond, 0)
	c.Imply(FieldMillisecond, 0)

	if c.Value(FieldHour) < 12 {
		c.Imply(FieldMeridiem, AM)
	} else {
		c.Imply(FieldMeridiem, PM)
	}

	forwardable := opts.ForwardDate && !c.IsCertain(FieldYear) && !c.IsAnchored()
	if forwardable && c.IsDateWithUnknownYear() {
		nextValidYear(c)
	}

	if err := validate(c); err != nil {
		return ResolvedInstant{}, err
	}

	t := instant(c, loc)
	if forwardable && t.Before(ref) {
		t = forward(c, t, ref, loc)
	}

	return ResolvedInstant{Time: t, components: c}, nil
}

// validate checks the assembled fields against real calendar rules.
func validate(c *Components) error {
	year, month, day := c.Value(FieldYear), c.Value(FieldMonth), c.Value(FieldDay)

	var msg string
	switch {
	case month < 1 || month > 12:
		msg = fmt.Sprintf("month %d out of range", month)
	case !IsValidDate(year, month, day):
		msg = fmt.Sprintf("%04d-%02d-%02d is not a calendar date", year, month, day)
	case c.Value(FieldHour) < 0 || c.Value(FieldHour) > 23:
		msg = fmt.Sprintf("hour %d out of range", c.Value(FieldHour))
	case c.Value(FieldMinute) < 0 || c.Value(FieldMinute) > 59:
		msg = fmt.Sprintf("minute %d out of range", c.Value(FieldMinute))
	case c.Value(FieldSecond) < 0 || c.Value(FieldSecond) > 59:
		msg = fmt.Sprintf("second %d out of range", c.Value(FieldSecond))
	case c.Value(FieldMillisecond) < 0 || c.Value(FieldMillisecond) > 999:
		msg = fmt.Sprintf("millisecond %d out of range", c.Value(FieldMillisecond))
	case c.IsSet(FieldWeekday) && (c.Value(FieldWeekday) < 0 || c.Value(FieldWeekday) > 6):
		msg = fmt.Sprintf("weekday %d out of range", c.Value(FieldWeekday))
	default:
		return nil
	}
	return InvalidDate(msg).WithContext("components", c.String())
}

func instant(c *Components, loc *time.Location) time.Time {
	return time.Date(
		c.Value(FieldYear), time.Month(c.Value(FieldMonth)), c.Value(FieldDay),
		c.Value(FieldHour), c.Value(FieldMinute), c.Value(FieldSecond),
		c.Value(FieldMillisecond)*int(time.Millisecond), loc)
}

// nextValidYear moves an implied year forward to the first year in which
// the certain month and day exist.
func nextValidYear(c *Components) {
	year, month, day := c.Value(FieldYear), c.Value(FieldMonth), c.Value(FieldDay)
	for i := 0; i < maxForwardYears && !IsValidDate(year, month, day); i++ {
		year++
	}
	if IsValidDate(year, month, day) {
		c.reimply(FieldYear, year)
	}
}

// forward advances the inferred part of the date until t is on or after
// ref. Only fields that are not assigned are rewritten.
func forward(c *Components, t, ref time.Time, loc *time.Location) time.Time {
	year, month, day := c.Value(FieldYear), c.Value(FieldMonth), c.Value(FieldDay)

	switch {
	case c.IsCertain(FieldMonth):
		for i := 0; i < maxForwardYears && t.Before(ref); i++ {
			year++
			if !IsValidDate(year, month, day) {
				continue
			}
			c.reimply(FieldYear, year)
			t = instant(c, loc)
		}

	case c.IsCertain(FieldDay):
		for i := 0; i < 12 && t.Before(ref); i++ {
			month++
			if month > 12 {
				month = 1
				year++
			}
			if !IsValidDate(year, month, day) {
				continue
			}
			c.reimply(FieldMonth, month)
			c.reimply(FieldYear, year)
			t = instant(c, loc)
		}

	default:
		step := 1
		if c.IsCertain(FieldWeekday) {
			step = 7
		}
		for t.Before(ref) {
			t = t.AddDate(0, 0, step)
		}
		c.reimply(FieldDay, t.Day())
		c.reimply(FieldMonth, int(t.Month()))
		c.reimply(FieldYear, t.Year())
	}

	return t
}
