package calendar

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Components is a sparse set of date/time fields. Every field carries a
// Status beside its value, so an implied default is never mistaken for a
// value the text actually stated.
//
// A Components value is owned by the candidate that created it. Mutating
// methods act on the receiver; Clone and Merge return fresh sets.
type Components struct {
	values [numFields]int
	status [numFields]Status
	tags   map[string]struct{}

	// anchored sets were derived from the reference by a duration; their
	// implied date is exact and the forward-date policy leaves it alone.
	anchored bool
}

// NewComponents returns an empty set.
func NewComponents() *Components {
	return &Components{}
}

// Assign stores value as a certain field. Re-assigning replaces the value.
// Range validity is deferred to resolution time.
func (c *Components) Assign(f Field, value int) *Components {
	c.values[f] = value
	c.status[f] = Assigned
	return c
}

// Imply stores value as a default, but only when f is still unset.
func (c *Components) Imply(f Field, value int) *Components {
	if c.status[f] != Unset {
		return c
	}
	c.values[f] = value
	c.status[f] = Implied
	return c
}

// reimply replaces the value of an implied field, keeping its status.
// Assigned fields are left alone.
func (c *Components) reimply(f Field, value int) {
	if c.status[f] == Assigned {
		return
	}
	c.values[f] = value
	c.status[f] = Implied
}

// Anchor marks the set as a fixed offset from the reference.
func (c *Components) Anchor() *Components {
	c.anchored = true
	return c
}

// IsAnchored reports whether the set is a fixed offset from the reference.
func (c *Components) IsAnchored() bool {
	return c.anchored
}

// Get returns the value of f and whether it is set at all.
func (c *Components) Get(f Field) (int, bool) {
	if c.status[f] == Unset {
		return 0, false
	}
	return c.values[f], true
}

// Value returns the value of f, or zero when unset.
func (c *Components) Value(f Field) int {
	return c.values[f]
}

// Status returns the confidence of f.
func (c *Components) Status(f Field) Status {
	return c.status[f]
}

// IsCertain reports whether f was assigned.
func (c *Components) IsCertain(f Field) bool {
	return c.status[f] == Assigned
}

// IsSet reports whether f is implied or assigned.
func (c *Components) IsSet(f Field) bool {
	return c.status[f] != Unset
}

// CertainFields lists the assigned fields in declaration order.
func (c *Components) CertainFields() []Field {
	var out []Field
	for f := FieldYear; f < numFields; f++ {
		if c.status[f] == Assigned {
			out = append(out, f)
		}
	}
	return out
}

// AddTag records which extractor or refiner touched the set.
func (c *Components) AddTag(tag string) *Components {
	if c.tags == nil {
		c.tags = make(map[string]struct{})
	}
	c.tags[tag] = struct{}{}
	return c
}

// AddTags records several tags at once.
func (c *Components) AddTags(tags ...string) *Components {
	for _, t := range tags {
		c.AddTag(t)
	}
	return c
}

// HasTag reports whether tag was recorded.
func (c *Components) HasTag(tag string) bool {
	_, ok := c.tags[tag]
	return ok
}

// Tags returns the recorded tags, sorted.
func (c *Components) Tags() []string {
	out := make([]string, 0, len(c.tags))
	for t := range c.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (c *Components) Clone() *Components {
	out := &Components{values: c.values, status: c.status, anchored: c.anchored}
	if len(c.tags) > 0 {
		out.tags = make(map[string]struct{}, len(c.tags))
		for t := range c.tags {
			out.tags[t] = struct{}{}
		}
	}
	return out
}

// Merge returns a new set where, per field, the higher-confidence value
// wins. On equal confidence the value from other wins. Tags are unioned.
// Neither input is modified.
func (c *Components) Merge(other *Components) *Components {
	out := c.Clone()
	if other == nil {
		return out
	}
	for f := FieldYear; f < numFields; f++ {
		if other.status[f] == Unset || other.status[f] < out.status[f] {
			continue
		}
		if out.status[f] == Assigned && other.values[f] != out.values[f] {
			slog.Debug("calendar: field conflict during merge",
				"field", f.String(),
				"current", out.values[f],
				"incoming", other.values[f])
		}
		out.values[f] = other.values[f]
		out.status[f] = other.status[f]
	}
	for t := range other.tags {
		out.AddTag(t)
	}
	out.anchored = out.anchored || other.anchored
	return out
}

// ConflictsWith returns a FieldConflict error for the first field that is
// assigned in both sets with different values, or nil.
func (c *Components) ConflictsWith(other *Components) error {
	if other == nil {
		return nil
	}
	for f := FieldYear; f < numFields; f++ {
		if c.status[f] == Assigned && other.status[f] == Assigned && c.values[f] != other.values[f] {
			return FieldConflict(f, c.values[f], other.values[f])
		}
	}
	return nil
}

// IsOnlyTime reports whether the text stated a time but no date.
func (c *Components) IsOnlyTime() bool {
	return !c.IsCertain(FieldYear) && !c.IsCertain(FieldMonth) &&
		!c.IsCertain(FieldDay) && !c.IsCertain(FieldWeekday) &&
		(c.IsCertain(FieldHour) || c.IsCertain(FieldMinute))
}

// IsDateWithUnknownYear reports whether month and day are certain but the year is not.
func (c *Components) IsDateWithUnknownYear() bool {
	return c.IsCertain(FieldMonth) && c.IsCertain(FieldDay) && !c.IsCertain(FieldYear)
}

// hasTimeOfDay reports whether any clock field is set.
func (c *Components) hasTimeOfDay() bool {
	return c.IsSet(FieldHour) || c.IsSet(FieldMinute) || c.IsSet(FieldSecond) || c.IsSet(FieldMillisecond)
}

// ToInstant resolves the set against ref without the forward-date policy.
// A set without any time information lands on 12:00 of its day.
func (c *Components) ToInstant(ref time.Time) (time.Time, error) {
	r, err := Resolve(c, ref, Options{})
	if err != nil {
		return time.Time{}, err
	}
	return r.Time, nil
}

// String renders the set for diagnostics: "!" marks assigned, "?" implied.
func (c *Components) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for f := FieldYear; f < numFields; f++ {
		if c.status[f] == Unset {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		mark := "?"
		if c.status[f] == Assigned {
			mark = "!"
		}
		fmt.Fprintf(&b, "%s:%d%s", f, c.values[f], mark)
	}
	b.WriteByte('}')
	return b.String()
}
