package datetext

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hrygo/datesense/plugin/calendar"
)

func TestDateOrderFor(t *testing.T) {
	tests := []struct {
		locale string
		want   calendar.DateOrder
	}{
		{"", calendar.MonthFirst},
		{"en", calendar.MonthFirst},
		{"en-US", calendar.MonthFirst},
		{"en-CA", calendar.MonthFirst},
		{"en-PH", calendar.MonthFirst},
		{"en_us", calendar.MonthFirst},
		{"en-GB", calendar.DayFirst},
		{"en-AU", calendar.DayFirst},
		{"en-IN", calendar.DayFirst},
		{"de-DE", calendar.DayFirst},
		{"fr", calendar.DayFirst},
		{"pt-BR", calendar.DayFirst},
		{"not a locale!!", calendar.MonthFirst},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, DateOrderFor(tt.locale))
		})
	}
}

func TestCanonicalLocale(t *testing.T) {
	assert.Equal(t, "en-GB", CanonicalLocale("en-gb"))
	assert.Equal(t, DefaultLocale, CanonicalLocale("not a locale!!"))
}

func TestLookupNames(t *testing.T) {
	m, ok := lookupMonth("Sept")
	assert.True(t, ok)
	assert.Equal(t, 9, m)

	m, ok = lookupMonth("oct.")
	assert.True(t, ok)
	assert.Equal(t, 10, m)

	_, ok = lookupMonth("octopus")
	assert.False(t, ok)

	w, ok := lookupWeekday("THURS")
	assert.True(t, ok)
	assert.Equal(t, 4, w)
}

func TestAlternationLongestFirst(t *testing.T) {
	got := alternation(map[string]int{"sep": 9, "september": 9, "sept": 9})
	assert.Equal(t, "september|sept|sep", got)
}
