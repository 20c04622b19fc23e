// Package export writes parse results as JSON, YAML or iCalendar.
package export

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/datesense/server/service/parse"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatICS  Format = "ics"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatICS}
}

// ParseFormat looks a format up by name, case-insensitively. "yml" is
// accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatICS, "ical", "icalendar":
		return FormatICS, nil
	}
	return "", errors.Errorf("unknown format %q", name)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	default:
		return "application/json"
	}
}

// Encoder writes document results to w.
type Encoder interface {
	Encode(w io.Writer, results []parse.DocumentResult) error
}

// NewEncoder returns the encoder for format.
func NewEncoder(format Format) (Encoder, error) {
	switch format {
	case FormatJSON:
		return jsonEncoder{}, nil
	case FormatYAML:
		return yamlEncoder{}, nil
	case FormatICS:
		return NewICSEncoder(), nil
	}
	return nil, errors.Errorf("unknown format %q", format)
}

type jsonEncoder struct{}

func (jsonEncoder) Encode(w io.Writer, results []parse.DocumentResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

type yamlEncoder struct{}

func (yamlEncoder) Encode(w io.Writer, results []parse.DocumentResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return errors.Wrap(err, "failed to encode YAML")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "failed to flush YAML")
	}
	return nil
}
