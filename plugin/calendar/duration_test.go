package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDuration(t *testing.T) {
	ref := time.Date(2021, 1, 21, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		set  *Components
		ref  time.Time
		d    Duration
		want time.Time
	}{
		{
			name: "one day ahead keeps noon default",
			set:  NewComponents(),
			ref:  ref,
			d:    Duration{UnitDay: 1},
			want: time.Date(2021, 1, 22, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "three hours ago",
			set:  NewComponents(),
			ref:  ref,
			d:    Duration{UnitHour: -3},
			want: time.Date(2021, 1, 21, 7, 0, 0, 0, time.UTC),
		},
		{
			name: "two weeks",
			set:  NewComponents(),
			ref:  ref,
			d:    Duration{UnitWeek: 2},
			want: time.Date(2021, 2, 4, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "one quarter",
			set:  NewComponents(),
			ref:  ref,
			d:    Duration{UnitQuarter: 1},
			want: time.Date(2021, 4, 21, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "month overflow",
			set:  NewComponents(),
			ref:  time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC),
			d:    Duration{UnitMonth: 1},
			want: time.Date(2021, 3, 3, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "mentioned zero day pins the date",
			set:  NewComponents(),
			ref:  ref,
			d:    Duration{UnitDay: 0, UnitHour: 16},
			want: time.Date(2021, 1, 22, 2, 0, 0, 0, time.UTC),
		},
		{
			name: "assigned hour survives a day shift",
			set:  NewComponents().Assign(FieldHour, 9),
			ref:  ref,
			d:    Duration{UnitDay: 1},
			want: time.Date(2021, 1, 22, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "stated offset moves the base day",
			set:  NewComponents().Assign(FieldTimezoneOffset, 120),
			ref:  time.Date(2021, 1, 21, 23, 0, 0, 0, time.UTC),
			d:    Duration{UnitDay: 1},
			want: time.Date(2021, 1, 23, 12, 0, 0, 0, time.FixedZone("", 7200)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyDuration(tt.set, tt.ref, tt.d)
			r, err := Resolve(out, tt.ref, Options{})
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(r.Time), "want %s, got %s", tt.want, r.Time)
		})
	}
}

func TestApplyDuration_ImpliesOnlyMentionedGroups(t *testing.T) {
	ref := time.Date(2021, 1, 21, 10, 30, 0, 0, time.UTC)

	dateOnly := ApplyDuration(NewComponents(), ref, Duration{UnitDay: 2})
	assert.Equal(t, Implied, dateOnly.Status(FieldDay))
	assert.Equal(t, 23, dateOnly.Value(FieldDay))
	assert.Equal(t, Unset, dateOnly.Status(FieldHour))
	assert.Equal(t, Unset, dateOnly.Status(FieldMinute))

	timeOnly := ApplyDuration(NewComponents(), ref, Duration{UnitMinute: 45})
	assert.Equal(t, Unset, timeOnly.Status(FieldDay))
	assert.Equal(t, 11, timeOnly.Value(FieldHour))
	assert.Equal(t, 15, timeOnly.Value(FieldMinute))
	assert.Equal(t, Implied, timeOnly.Status(FieldMinute))
}

func TestApplyDuration_DoesNotOverwrite(t *testing.T) {
	ref := time.Date(2021, 1, 21, 10, 0, 0, 0, time.UTC)
	in := NewComponents().Assign(FieldDay, 5).AddTag("parser/RelativeDurationParser")

	out := ApplyDuration(in, ref, Duration{UnitMonth: 1})
	assert.Equal(t, 5, out.Value(FieldDay))
	assert.True(t, out.IsCertain(FieldDay))
	assert.Equal(t, 2, out.Value(FieldMonth))
	assert.Equal(t, Implied, out.Status(FieldMonth))
	assert.True(t, out.HasTag("parser/RelativeDurationParser"))

	assert.False(t, in.IsSet(FieldMonth))
}

func TestDuration_Reverse(t *testing.T) {
	d := Duration{UnitDay: 3, UnitHour: -2, UnitMinute: 0}
	r := d.Reverse()

	assert.Equal(t, Duration{UnitDay: -3, UnitHour: 2, UnitMinute: 0}, r)
	assert.Equal(t, 3, d[UnitDay])
	_, mentioned := r[UnitMinute]
	assert.True(t, mentioned)
}

func TestDuration_AddTo(t *testing.T) {
	base := time.Date(2020, 2, 29, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2021, 3, 1, 23, 0, 0, 0, time.UTC), Duration{UnitYear: 1}.AddTo(base))
	assert.Equal(t, time.Date(2020, 3, 1, 1, 0, 0, 0, time.UTC), Duration{UnitHour: 2}.AddTo(base))
	assert.Equal(t, time.Date(2020, 2, 29, 23, 0, 0, 500*int(time.Millisecond), time.UTC), Duration{UnitMillisecond: 500}.AddTo(base))
	assert.Equal(t, base, Duration{}.AddTo(base))
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
		ok   bool
	}{
		{"year", UnitYear, true},
		{"Years", UnitYear, true},
		{"yrs", UnitYear, true},
		{"quarter", UnitQuarter, true},
		{"months", UnitMonth, true},
		{"mo", UnitMonth, true},
		{"weeks", UnitWeek, true},
		{"day", UnitDay, true},
		{"d", UnitDay, true},
		{"hours", UnitHour, true},
		{"h", UnitHour, true},
		{"mins", UnitMinute, true},
		{"minute", UnitMinute, true},
		{"seconds", UnitSecond, true},
		{"sec", UnitSecond, true},
		{"ms", UnitMillisecond, true},
		{"milliseconds", UnitMillisecond, true},
		{"fortnight", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseUnit(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
