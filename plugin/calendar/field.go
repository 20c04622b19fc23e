// Package calendar resolves partial date/time knowledge into concrete,
// calendar-valid instants.
//
// A Components value accumulates fields from one or more extractors. Each
// field is unset, implied (a low-confidence default) or assigned (stated by
// the source text). Resolve fills the gaps from a reference instant and
// validates the result, OrderResolver decides which bare numeric token is
// the day, month or year, ResolveRange links a start and an end, and
// ApplyDuration shifts a set by calendar units.
package calendar

import "strings"

// Field names one date/time component.
type Field int

const (
	FieldYear Field = iota
	FieldMonth
	FieldDay
	FieldWeekday
	FieldHour
	FieldMinute
	FieldSecond
	FieldMillisecond
	FieldMeridiem
	FieldTimezoneOffset

	numFields
)

var fieldNames = [numFields]string{
	FieldYear:           "year",
	FieldMonth:          "month",
	FieldDay:            "day",
	FieldWeekday:        "weekday",
	FieldHour:           "hour",
	FieldMinute:         "minute",
	FieldSecond:         "second",
	FieldMillisecond:    "millisecond",
	FieldMeridiem:       "meridiem",
	FieldTimezoneOffset: "timezoneOffset",
}

// Fields lists every field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, numFields)
	for f := FieldYear; f < numFields; f++ {
		out = append(out, f)
	}
	return out
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// ParseField looks a field up by name. Matching is case-insensitive and
// accepts "utcOffsetMinutes" as an alias for the timezone offset.
func ParseField(name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "utcoffsetminutes" {
		return FieldTimezoneOffset, true
	}
	for f := FieldYear; f < numFields; f++ {
		if strings.ToLower(fieldNames[f]) == name {
			return f, true
		}
	}
	return 0, false
}

// Status is the confidence level of a single field.
type Status uint8

const (
	Unset Status = iota
	Implied
	Assigned
)

func (s Status) String() string {
	switch s {
	case Implied:
		return "implied"
	case Assigned:
		return "assigned"
	default:
		return "unset"
	}
}

// Meridiem values stored in FieldMeridiem.
const (
	AM = 0
	PM = 1
)
