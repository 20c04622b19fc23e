package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	apierrors "github.com/hrygo/datesense/server/internal/errors"
	"github.com/hrygo/datesense/server/service/parse"
)

func fixture() []parse.DocumentResult {
	end := time.Date(2012, 8, 14, 12, 0, 0, 0, time.UTC)
	return []parse.DocumentResult{
		{
			ID: "a",
			Matches: []parse.Match{
				{
					Index:   8,
					Text:    "8/10/2012 at 10:00",
					Start:   time.Date(2012, 8, 10, 10, 0, 0, 0, time.UTC),
					Certain: map[string]bool{"year": true, "month": true, "day": true, "hour": true, "minute": true},
					Tags:    []string{"parser/SlashDateFormatParser", "parser/TimeExpressionParser"},
					Context: "Kickoff 8/10/2012 at 10:00 in room 4",
				},
				{
					Index:   40,
					Text:    "8/12 - 8/14",
					Start:   time.Date(2012, 8, 12, 12, 0, 0, 0, time.UTC),
					End:     &end,
					Certain: map[string]bool{"year": false, "month": true, "day": true, "hour": false},
					Tags:    []string{"parser/SlashDateFormatParser", "refiner/MergeDateRangeRefiner"},
				},
			},
		},
		{
			ID:    "b",
			Error: &parse.Error{Code: apierrors.ErrCodeInputTooLong, Message: "too long"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"ics", FormatICS, false},
		{"ical", FormatICS, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "application/yaml", FormatYAML.ContentType())
	assert.Equal(t, "text/calendar; charset=utf-8", FormatICS.ContentType())
}

func TestNewEncoder(t *testing.T) {
	for _, f := range Formats() {
		enc, err := NewEncoder(f)
		require.NoError(t, err, f)
		assert.NotNil(t, enc)
	}
	_, err := NewEncoder("xml")
	assert.Error(t, err)
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jsonEncoder{}.Encode(&buf, fixture()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)

	results := decoded[0]["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "8/10/2012 at 10:00", first["text"])
	assert.Equal(t, "2012-08-10T10:00:00Z", first["start"])
	assert.NotContains(t, first, "end")

	second := results[1].(map[string]any)
	assert.Equal(t, "2012-08-14T12:00:00Z", second["end"])

	errObj := decoded[1]["error"].(map[string]any)
	assert.Equal(t, "INPUT_TOO_LONG", errObj["code"])
}

func TestYAMLEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, yamlEncoder{}.Encode(&buf, fixture()))

	out := buf.String()
	assert.Contains(t, out, "id: a")
	assert.Contains(t, out, "text: 8/10/2012 at 10:00")
	assert.Contains(t, out, "code: INPUT_TOO_LONG")

	var decoded []parse.DocumentResult
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.True(t, decoded[0].Matches[1].End.Equal(time.Date(2012, 8, 14, 12, 0, 0, 0, time.UTC)))
}

func TestICSEncoder(t *testing.T) {
	enc := NewICSEncoder()
	enc.Now = func() time.Time { return time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC) }

	var buf bytes.Buffer
	require.NoError(t, enc.Encode(&buf, fixture()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "PRODID:"+ProductID)
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "DTSTAMP:20200102T030405Z")

	// Timed event.
	assert.Contains(t, out, "SUMMARY:8/10/2012 at 10:00")
	assert.Contains(t, out, "DTSTART:20120810T100000Z")

	// All-day range; DTEND is exclusive.
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20120812")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20120815")

	matches := fixture()[0].Matches
	assert.Contains(t, out, "UID:"+EventUID("a", matches[0]))
	assert.Contains(t, out, "UID:"+EventUID("a", matches[1]))
}

func TestEventUID(t *testing.T) {
	m := fixture()[0].Matches[0]
	assert.Equal(t, EventUID("a", m), EventUID("a", m))
	assert.NotEqual(t, EventUID("a", m), EventUID("b", m))
	assert.True(t, strings.HasSuffix(EventUID("a", m), "@datesense"))
}
