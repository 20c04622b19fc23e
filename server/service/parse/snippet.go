package parse

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SnippetExtractor cuts the text around a match for display.
type SnippetExtractor struct {
	contextChars    int
	maxContextChars int
}

// NewSnippetExtractor creates an extractor keeping contextChars runes on
// each side of a match. Zero disables snippets.
func NewSnippetExtractor(contextChars int) *SnippetExtractor {
	e := &SnippetExtractor{contextChars: contextChars, maxContextChars: 200}
	if e.contextChars > e.maxContextChars {
		e.contextChars = e.maxContextChars
	}
	return e
}

// Extract returns the text around content[start:end], widened to word
// boundaries, with "..." where it was cut and line breaks folded to spaces.
func (e *SnippetExtractor) Extract(content string, start, end int) string {
	if e == nil || e.contextChars <= 0 || content == "" {
		return ""
	}
	if start < 0 || end > len(content) || start > end {
		return ""
	}

	runes := []rune(content)
	from := utf8.RuneCountInString(content[:start]) - e.contextChars
	to := utf8.RuneCountInString(content[:end]) + e.contextChars
	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}
	from = e.adjustToWordBoundary(runes, from, false)
	to = e.adjustToWordBoundary(runes, to, true)

	return e.buildSnippet(runes, from, to)
}

// adjustToWordBoundary moves pos to the nearest separator: backwards for a
// window start, forwards for a window end.
func (e *SnippetExtractor) adjustToWordBoundary(runes []rune, pos int, isEnd bool) int {
	runeLen := len(runes)
	if pos <= 0 {
		return 0
	}
	if pos >= runeLen {
		return runeLen
	}

	maxAdjust := 10

	if isEnd {
		for i := pos; i < runeLen && i < pos+maxAdjust; i++ {
			if e.isSeparator(runes[i]) {
				return i
			}
		}
	} else {
		for i := pos - 1; i >= 0 && i >= pos-maxAdjust; i-- {
			if e.isSeparator(runes[i]) {
				return i + 1
			}
		}
	}

	return pos
}

// isSeparator returns true if the rune is a word separator.
func (e *SnippetExtractor) isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', '!', '?', ';', ':', '(', ')':
		return true
	}
	return false
}

func (e *SnippetExtractor) buildSnippet(runes []rune, start, end int) string {
	var builder strings.Builder
	if start > 0 {
		builder.WriteString("...")
	}
	builder.WriteString(strings.Join(strings.Fields(string(runes[start:end])), " "))
	if end < len(runes) {
		builder.WriteString("...")
	}
	return builder.String()
}
