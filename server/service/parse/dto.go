package parse

import (
	"time"

	"github.com/hrygo/datesense/plugin/calendar"
	"github.com/hrygo/datesense/plugin/datetext"
	apierrors "github.com/hrygo/datesense/server/internal/errors"
)

// Document is one input to a batch.
type Document struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Markdown bool   `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}

// Match is the wire form of one parse result.
type Match struct {
	Index int        `json:"index" yaml:"index"`
	Text  string     `json:"text" yaml:"text"`
	Start time.Time  `json:"start" yaml:"start"`
	End   *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
	// Certain holds every field the start has a value for: true when the
	// text stated it, false when it was inferred.
	Certain map[string]bool `json:"certain" yaml:"certain"`
	Tags    []string        `json:"tags" yaml:"tags"`
	Context string          `json:"context,omitempty" yaml:"context,omitempty"`
}

// Error is the wire form of an APIError.
type Error struct {
	Code    apierrors.ErrorCode `json:"code" yaml:"code"`
	Message string              `json:"message" yaml:"message"`
}

// DocumentResult holds the matches of one document, or why it failed.
type DocumentResult struct {
	ID      string  `json:"id" yaml:"id"`
	Matches []Match `json:"results" yaml:"results"`
	Error   *Error  `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewMatch converts a parse result.
func NewMatch(r datetext.Result) Match {
	m := Match{
		Index:   r.Index,
		Text:    r.Text,
		Start:   r.Start.Time,
		Certain: make(map[string]bool),
		Tags:    r.Tags(),
	}
	if r.End != nil {
		end := r.End.Time
		m.End = &end
	}
	for _, field := range calendar.Fields() {
		switch r.Start.Status(field) {
		case calendar.Assigned:
			m.Certain[field.String()] = true
		case calendar.Implied:
			m.Certain[field.String()] = false
		}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m
}

// NewError converts err to its wire form.
func NewError(err error) *Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := apierrors.As(err); ok {
		return &Error{Code: apiErr.Code, Message: apiErr.Message}
	}
	return &Error{Code: apierrors.ErrCodeInternal, Message: err.Error()}
}
