package calendar

import "time"

// AssignSimilarDate assigns the calendar date of t.
func AssignSimilarDate(c *Components, t time.Time) {
	c.Assign(FieldDay, t.Day())
	c.Assign(FieldMonth, int(t.Month()))
	c.Assign(FieldYear, t.Year())
}

// AssignSimilarTime assigns the clock time of t, including its meridiem.
func AssignSimilarTime(c *Components, t time.Time) {
	c.Assign(FieldHour, t.Hour())
	c.Assign(FieldMinute, t.Minute())
	c.Assign(FieldSecond, t.Second())
	c.Assign(FieldMillisecond, t.Nanosecond()/int(time.Millisecond))
	if t.Hour() < 12 {
		c.Assign(FieldMeridiem, AM)
	} else {
		c.Assign(FieldMeridiem, PM)
	}
}

// ImplySimilarDate implies the calendar date of t.
func ImplySimilarDate(c *Components, t time.Time) {
	c.Imply(FieldDay, t.Day())
	c.Imply(FieldMonth, int(t.Month()))
	c.Imply(FieldYear, t.Year())
}

// ImplySimilarTime implies the clock time of t.
func ImplySimilarTime(c *Components, t time.Time) {
	c.Imply(FieldHour, t.Hour())
	c.Imply(FieldMinute, t.Minute())
	c.Imply(FieldSecond, t.Second())
	c.Imply(FieldMillisecond, t.Nanosecond()/int(time.Millisecond))
}

// AssignTheNextDay assigns the day after t and implies its clock time.
func AssignTheNextDay(c *Components, t time.Time) {
	t = t.AddDate(0, 0, 1)
	AssignSimilarDate(c, t)
	ImplySimilarTime(c, t)
}

// isLeapYear returns true if year is a leap year.
func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysInMonth returns the number of days in the given month, or 0 for an
// out-of-range month.
func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// IsValidDate reports whether year-month-day exists in the proleptic
// Gregorian calendar.
func IsValidDate(year, month, day int) bool {
	return day >= 1 && day <= daysInMonth(year, month)
}
