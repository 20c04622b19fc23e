package calendar

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.' || r == ' '
	})
}

func TestOrderResolver_Resolve(t *testing.T) {
	tests := []struct {
		input      string
		order      DateOrder
		wantYear   int // 0 means unset
		wantMonth  int
		wantDay    int
		dayCertain bool
	}{
		{"8/10/2012", MonthFirst, 2012, 8, 10, true},
		{"8/10/2012", DayFirst, 2012, 10, 8, true},
		{"01/02/2015", MonthFirst, 2015, 1, 2, true},
		{"01/02/2015", DayFirst, 2015, 2, 1, true},
		{"2015/01/02", MonthFirst, 2015, 1, 2, true},
		{"2015/01/02", DayFirst, 2015, 1, 2, true},
		{"14/4/90", MonthFirst, 1990, 4, 14, true},
		{"4/14/90", DayFirst, 1990, 4, 14, true},
		{"12-30-16", MonthFirst, 2016, 12, 30, true},
		{"30-12-16", DayFirst, 2016, 12, 30, true},
		{"1/2/51", MonthFirst, 1951, 1, 2, true},
		{"1/2/50", MonthFirst, 2050, 1, 2, true},
		{"2/29/2000", MonthFirst, 2000, 2, 29, true},
		{"04/2016", MonthFirst, 2016, 4, 1, false},
		{"04/2016", DayFirst, 2016, 4, 1, false},
		{"2012/8", MonthFirst, 2012, 8, 1, false},
		{"8/10", MonthFirst, 0, 8, 10, true},
		{"8/10", DayFirst, 0, 10, 8, true},
		{"2/29", MonthFirst, 0, 2, 29, true},
		{"25/12", MonthFirst, 0, 12, 25, true},
	}
	for _, tt := range tests {
		t.Run(tt.input+" "+tt.order.String(), func(t *testing.T) {
			c, err := OrderResolver{Order: tt.order}.ResolveNumeric(split(tt.input)...)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMonth, c.Value(FieldMonth))
			assert.True(t, c.IsCertain(FieldMonth))
			assert.Equal(t, tt.wantDay, c.Value(FieldDay))
			assert.Equal(t, tt.dayCertain, c.IsCertain(FieldDay))
			if tt.wantYear == 0 {
				assert.False(t, c.IsSet(FieldYear))
			} else {
				assert.Equal(t, tt.wantYear, c.Value(FieldYear))
				assert.True(t, c.IsCertain(FieldYear))
			}
		})
	}
}

func TestOrderResolver_Impossible(t *testing.T) {
	inputs := []string{
		"8/32/2014",
		"8/32",
		"2/29/2014",
		"2014/22/29",
		"2014/13/22",
		"80-32-89-89",
		"02/29/2022",
		"06/31/2022",
		"06/-31/2022",
		"18/13/2022",
		"15/28/2022",
		"4/13/1",
		"13/2012",
		"00/2016",
		"100/1/2012",
		"7",
	}
	for _, input := range inputs {
		for _, order := range []DateOrder{MonthFirst, DayFirst} {
			t.Run(input+" "+order.String(), func(t *testing.T) {
				var texts []string
				if strings.Contains(input, "/-") {
					texts = strings.Split(input, "/")
				} else {
					texts = split(input)
				}
				_, err := OrderResolver{Order: order}.ResolveNumeric(texts...)
				require.Error(t, err)
				assert.True(t, IsCode(err, ErrCodeAmbiguousDateUnresolved), "got %v", err)
			})
		}
	}
}

func TestOrderResolver_Strict(t *testing.T) {
	strict := OrderResolver{Order: MonthFirst, Strict: true}

	c, err := strict.ResolveNumeric("12", "30", "16")
	require.NoError(t, err)
	assert.Equal(t, 2016, c.Value(FieldYear))

	for _, texts := range [][]string{{"8", "10"}, {"04", "2016"}} {
		_, err := strict.ResolveNumeric(texts...)
		assert.True(t, IsCode(err, ErrCodeAmbiguousDateUnresolved), "%v", texts)
	}
}

func TestOrderResolver_NamedMonth(t *testing.T) {
	day, err := NumericToken("10")
	require.NoError(t, err)
	year, err := NumericToken("2012")
	require.NoError(t, err)

	// "10 Oct 2012" must not read the named month as a day.
	c, err := OrderResolver{Order: MonthFirst}.Resolve([]Token{day, MonthToken("Oct", 10), year})
	require.NoError(t, err)
	assert.Equal(t, 10, c.Value(FieldMonth))
	assert.Equal(t, 10, c.Value(FieldDay))
	assert.Equal(t, 2012, c.Value(FieldYear))

	// "Nov/2023"
	year, err = NumericToken("2023")
	require.NoError(t, err)
	c, err = OrderResolver{Order: DayFirst}.Resolve([]Token{MonthToken("Nov", 11), year})
	require.NoError(t, err)
	assert.Equal(t, 11, c.Value(FieldMonth))
	assert.Equal(t, 2023, c.Value(FieldYear))
	assert.Equal(t, 1, c.Value(FieldDay))
}

func TestNumericToken(t *testing.T) {
	tests := []struct {
		text    string
		want    int
		wantErr bool
	}{
		{"8", 8, false},
		{"08", 8, false},
		{"2012", 2012, false},
		{"", 0, true},
		{"12345", 0, true},
		{"1a", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tok, err := NumericToken(tt.text)
			if tt.wantErr {
				assert.True(t, IsCode(err, ErrCodeAmbiguousDateUnresolved))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tok.Value)
			assert.False(t, tok.Named)
		})
	}
}

func TestOrderResolver_ResolvedDatesAreValid(t *testing.T) {
	for _, order := range []DateOrder{MonthFirst, DayFirst} {
		r := OrderResolver{Order: order}
		for a := 1; a <= 31; a++ {
			for b := 1; b <= 31; b++ {
				c, err := r.Resolve([]Token{{Text: fmt.Sprintf("%02d", a), Value: a}, {Text: fmt.Sprintf("%02d", b), Value: b}, {Text: "2023", Value: 2023}})
				if err != nil {
					continue
				}
				assert.True(t, IsValidDate(c.Value(FieldYear), c.Value(FieldMonth), c.Value(FieldDay)))
			}
		}
	}
}
