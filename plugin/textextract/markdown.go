// Package textextract turns documents into runs of prose text that can be
// scanned for date expressions. Each run keeps its byte offset in the
// source so matches can be reported against the original document.
package textextract

import (
	"strings"
	"sync"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Segment is a run of prose and its byte offset in the source.
type Segment struct {
	Offset int
	Text   string
}

// End returns the byte offset just past the segment.
func (s Segment) End() int {
	return s.Offset + len(s.Text)
}

// The goldmark instance never changes after construction and is safe to share.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func markdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
		)
	})
	return markdownInstance
}

// Extract returns the segments of doc. Plain text is a single segment.
func Extract(doc string, markdown bool) []Segment {
	if doc == "" {
		return nil
	}
	if !markdown {
		return []Segment{{Offset: 0, Text: doc}}
	}
	return Markdown([]byte(doc))
}

// Markdown returns the prose of source in document order. Code blocks,
// code spans, raw HTML and autolinks are skipped. Text nodes of one block
// that are separated only by whitespace, such as soft line breaks, are
// joined into one segment; the segment text is always the verbatim source
// slice source[Offset:End()].
func Markdown(source []byte) []Segment {
	if len(source) == 0 {
		return nil
	}
	document := markdownParser().Parser().Parse(text.NewReader(source))

	var segments []Segment
	start, stop := -1, -1
	flush := func() {
		if start >= 0 && stop > start {
			segments = append(segments, Segment{Offset: start, Text: string(source[start:stop])})
		}
		start, stop = -1, -1
	}

	_ = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.CodeSpan, *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML, *ast.AutoLink:
			if entering {
				flush()
			}
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if !entering {
				return ast.WalkContinue, nil
			}
			seg := node.Segment
			if seg.IsEmpty() {
				return ast.WalkContinue, nil
			}
			if start >= 0 && seg.Start >= stop && blank(source[stop:seg.Start]) {
				stop = seg.Stop
				return ast.WalkContinue, nil
			}
			flush()
			start, stop = seg.Start, seg.Stop
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock {
			flush()
		}
		return ast.WalkContinue, nil
	})
	flush()
	return segments
}

func blank(b []byte) bool {
	return strings.IndexFunc(string(b), func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
