package datetext

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/hrygo/datesense/plugin/calendar"
)

// DefaultLocale is used when a caller supplies no locale.
const DefaultLocale = "en-US"

// monthFirstRegions are the English-speaking regions that write the month first.
var monthFirstRegions = map[string]bool{
	"US": true,
	"CA": true,
	"PH": true,
}

// DateOrderFor maps a BCP 47 tag to the order used for bare numeric dates.
// English without a region and en-US/CA/PH read month first; every other
// English region and every other language reads day first. Tags that do
// not parse fall back to month first.
func DateOrderFor(locale string) calendar.DateOrder {
	if strings.TrimSpace(locale) == "" {
		return calendar.MonthFirst
	}
	tag, err := language.Parse(locale)
	if err != nil {
		slog.Debug("datetext: unparseable locale, using month-first", "locale", locale, "error", err)
		return calendar.MonthFirst
	}

	base, _ := tag.Base()
	if base.String() != "en" {
		return calendar.DayFirst
	}
	region, conf := tag.Region()
	if conf != language.Exact {
		return calendar.MonthFirst
	}
	if monthFirstRegions[region.String()] {
		return calendar.MonthFirst
	}
	return calendar.DayFirst
}

// CanonicalLocale returns the canonical form of locale, or DefaultLocale if
// it cannot be parsed.
func CanonicalLocale(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultLocale
	}
	return tag.String()
}

var monthNames = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

var weekdayNames = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tues": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thur": 4, "thurs": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

// numberWords covers the spelled-out counts used in relative durations.
var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12,
}

// alternation builds a regexp alternation with longer keys first, so
// "september" is tried before "sep".
func alternation[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return strings.Join(keys, "|")
}

// lookupMonth resolves an English month name or abbreviation.
func lookupMonth(s string) (int, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSuffix(s, "."))]
	return m, ok
}

func lookupWeekday(s string) (int, bool) {
	w, ok := weekdayNames[strings.ToLower(s)]
	return w, ok
}
