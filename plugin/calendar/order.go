package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// DateOrder is a locale's preferred reading of bare numeric dates.
type DateOrder int

const (
	// MonthFirst reads 8/10/2012 as August 10 (en-US).
	MonthFirst DateOrder = iota
	// DayFirst reads 8/10/2012 as 8 October (en-GB).
	DayFirst
)

func (o DateOrder) String() string {
	if o == DayFirst {
		return "day-first"
	}
	return "month-first"
}

// Token is one component of a numeric date candidate.
type Token struct {
	Text  string
	Value int
	// Named pins the token to Field, e.g. a month written as "Oct".
	Named bool
	Field Field
}

// NumericToken builds a token from a run of one to four ASCII digits.
func NumericToken(text string) (Token, error) {
	if text == "" || len(text) > 4 || strings.TrimLeft(text, "0123456789") != "" {
		return Token{}, AmbiguousDateUnresolved(fmt.Sprintf("%q is not a numeric date token", text))
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return Token{}, &Error{Code: ErrCodeAmbiguousDateUnresolved, Message: "bad numeric token", Cause: err}
	}
	return Token{Text: text, Value: v}, nil
}

// MonthToken builds a token whose month was already identified by name.
func MonthToken(text string, month int) Token {
	return Token{Text: text, Value: month, Named: true, Field: FieldMonth}
}

func (t Token) digits() int {
	return len(t.Text)
}

// yearLike reports whether the token can only be a year.
func (t Token) yearLike() bool {
	return !t.Named && (t.digits() == 4 || t.Value > 31)
}

// fullYear reports whether the token is written as a four-digit year. Only
// those count as the year of a two-token shorthand, so "8/32" is not August 2032.
func (t Token) fullYear() bool {
	return !t.Named && t.digits() == 4
}

// layout maps token positions to fields.
type layout []Field

var (
	layoutsYearFirst = []layout{
		{FieldYear, FieldMonth, FieldDay},
		{FieldYear, FieldDay, FieldMonth},
	}
	layoutsMonthFirst = []layout{
		{FieldMonth, FieldDay, FieldYear},
		{FieldDay, FieldMonth, FieldYear},
	}
	layoutsDayFirst = []layout{
		{FieldDay, FieldMonth, FieldYear},
		{FieldMonth, FieldDay, FieldYear},
	}
	layoutsMonthYear     = []layout{{FieldMonth, FieldYear}}
	layoutsYearMonth     = []layout{{FieldYear, FieldMonth}}
	layoutsShortMonthDay = []layout{
		{FieldMonth, FieldDay},
		{FieldDay, FieldMonth},
	}
	layoutsShortDayMonth = []layout{
		{FieldDay, FieldMonth},
		{FieldMonth, FieldDay},
	}
)

// OrderResolver decides which bare numeric token is the day, the month
// and the year.
type OrderResolver struct {
	Order DateOrder
	// Strict rejects the two-token shorthands (dd/mm, mm/yyyy).
	Strict bool
}

// Resolve assigns day, month and year from tokens.
//
// Candidate layouts are tried in a fixed order and the first calendar-valid
// one wins, so the locale's order always beats the swapped reading when
// both are valid. For mm/yyyy the day is implied as 1; for dd/mm the year
// is left unset.
func (r OrderResolver) Resolve(tokens []Token) (*Components, error) {
	if len(tokens) < 2 || len(tokens) > 3 {
		return nil, AmbiguousDateUnresolved(fmt.Sprintf("%d tokens do not form a date", len(tokens))).
			WithContext("tokens", tokenTexts(tokens))
	}
	if r.Strict && len(tokens) == 2 {
		return nil, AmbiguousDateUnresolved("shorthand date rejected in strict mode").
			WithContext("tokens", tokenTexts(tokens))
	}

	for _, l := range r.layouts(tokens) {
		if c, ok := apply(l, tokens); ok {
			return c, nil
		}
	}

	return nil, AmbiguousDateUnresolved("no token order yields a calendar date").
		WithContext("tokens", tokenTexts(tokens)).
		WithContext("order", r.Order.String())
}

// ResolveNumeric is a convenience wrapper over Resolve for digit strings.
func (r OrderResolver) ResolveNumeric(texts ...string) (*Components, error) {
	tokens := make([]Token, 0, len(texts))
	for _, s := range texts {
		t, err := NumericToken(s)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return r.Resolve(tokens)
}

func (r OrderResolver) layouts(tokens []Token) []layout {
	if len(tokens) == 2 {
		switch {
		case tokens[1].fullYear():
			return layoutsMonthYear
		case tokens[0].fullYear():
			return layoutsYearMonth
		case r.Order == DayFirst:
			return layoutsShortDayMonth
		default:
			return layoutsShortMonthDay
		}
	}

	switch {
	case tokens[0].yearLike():
		return layoutsYearFirst
	case r.Order == DayFirst:
		return layoutsDayFirst
	default:
		return layoutsMonthFirst
	}
}

// apply reads tokens through l and reports whether the outcome is a real date.
func apply(l layout, tokens []Token) (*Components, bool) {
	year, month, day := 0, 0, 0
	hasYear, hasDay := false, false

	for i, f := range l {
		t := tokens[i]
		if t.Named && t.Field != f {
			return nil, false
		}
		switch f {
		case FieldYear:
			y, ok := yearValue(t)
			if !ok {
				return nil, false
			}
			year, hasYear = y, true
		case FieldMonth:
			if !t.Named && t.digits() > 2 {
				return nil, false
			}
			month = t.Value
		case FieldDay:
			if t.digits() > 2 {
				return nil, false
			}
			day, hasDay = t.Value, true
		}
	}

	if month < 1 || month > 12 {
		return nil, false
	}

	c := NewComponents()
	c.Assign(FieldMonth, month)

	switch {
	case hasYear && hasDay:
		if !IsValidDate(year, month, day) {
			return nil, false
		}
		c.Assign(FieldDay, day)
		c.Assign(FieldYear, year)
	case hasYear:
		c.Assign(FieldYear, year)
		c.Imply(FieldDay, 1)
	default:
		// Year unknown: February 29 is kept and checked against the resolved year.
		if !IsValidDate(2000, month, day) {
			return nil, false
		}
		c.Assign(FieldDay, day)
	}
	return c, true
}

// yearValue expands a year token. Two-digit years above 50 land in the
// 1900s, the rest in the 2000s.
func yearValue(t Token) (int, bool) {
	if t.Named {
		return 0, false
	}
	switch t.digits() {
	case 4:
		return t.Value, true
	case 2:
		if t.Value > 50 {
			return 1900 + t.Value, true
		}
		return 2000 + t.Value, true
	default:
		return 0, false
	}
}

func tokenTexts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}
