// Package parse runs date extraction over whole documents and batches of
// documents, and converts results to their wire form.
package parse

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/datesense/plugin/datetext"
	"github.com/hrygo/datesense/plugin/textextract"
	"github.com/hrygo/datesense/plugin/timeout"
	apierrors "github.com/hrygo/datesense/server/internal/errors"
	"github.com/hrygo/datesense/server/internal/observability"
	"github.com/hrygo/datesense/server/queryengine"
)

// Config tunes the service. Zero values take the defaults in plugin/timeout.
type Config struct {
	Concurrency    int
	MaxInputLength int
	MaxBatchSize   int
	RequestTimeout time.Duration
	BatchTimeout   time.Duration
	// ContextChars is the snippet width on each side of a match; zero
	// disables snippets.
	ContextChars int
	// Location anchors a zero reference.
	Location *time.Location
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = timeout.DefaultConcurrency
	}
	if c.MaxInputLength <= 0 {
		c.MaxInputLength = timeout.MaxInputLength
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = timeout.MaxBatchSize
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = timeout.RequestTimeout
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = timeout.BatchTimeout
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// Request carries what every document of a call shares.
type Request struct {
	// Reference anchors relative and partial expressions; zero means now.
	Reference time.Time
	Options   datetext.Options
	// Filter is an optional CEL expression a result must satisfy.
	Filter string
}

// Service parses documents with a TimeService.
type Service struct {
	TimeService datetext.TimeService

	config   Config
	snippets *SnippetExtractor
	now      func() time.Time
}

// NewService creates a new parse service.
func NewService(ts datetext.TimeService, config Config) *Service {
	config = config.withDefaults()
	return &Service{
		TimeService: ts,
		config:      config,
		snippets:    NewSnippetExtractor(config.ContextChars),
		now:         time.Now,
	}
}

// ParseDocument returns the matches in one document.
func (s *Service) ParseDocument(ctx context.Context, doc Document, req Request) ([]Match, error) {
	filter, err := compileFilter(req.Filter)
	if err != nil {
		return nil, err
	}
	req.Reference = s.reference(req.Reference)

	ctx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()
	return s.parseDocument(ctx, doc, req, filter)
}

// ParseBatch parses docs concurrently. Results are in input order; a
// document that fails carries its error instead of failing the batch.
func (s *Service) ParseBatch(ctx context.Context, docs []Document, req Request) ([]DocumentResult, error) {
	if len(docs) == 0 {
		return nil, apierrors.InvalidArgument("documents are required")
	}
	if len(docs) > s.config.MaxBatchSize {
		return nil, apierrors.InvalidArgumentf("batch of %d documents exceeds limit of %d", len(docs), s.config.MaxBatchSize)
	}
	filter, err := compileFilter(req.Filter)
	if err != nil {
		return nil, err
	}
	req.Reference = s.reference(req.Reference)

	ctx, cancel := context.WithTimeout(ctx, s.config.BatchTimeout)
	defer cancel()

	results := make([]DocumentResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for i, doc := range docs {
		results[i].ID = doc.ID
		g.Go(func() error {
			docCtx, docCancel := context.WithTimeout(gctx, s.config.RequestTimeout)
			defer docCancel()

			matches, err := s.parseDocument(docCtx, doc, req, filter)
			if err != nil {
				observability.Logger(gctx).Debug("parse: document failed",
					observability.LogFieldDocumentID, doc.ID,
					observability.LogFieldErrorCode, apierrors.GetCodeFromError(err, apierrors.ErrCodeInternal),
					"error", err)
				results[i].Error = NewError(err)
				return nil
			}
			results[i].Matches = matches
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}
	return results, nil
}

func (s *Service) parseDocument(ctx context.Context, doc Document, req Request, filter *queryengine.Filter) ([]Match, error) {
	if len(doc.Text) > s.config.MaxInputLength {
		return nil, apierrors.InputTooLong(len(doc.Text), s.config.MaxInputLength)
	}

	var results []datetext.Result
	for _, seg := range textextract.Extract(doc.Text, doc.Markdown) {
		found, err := s.TimeService.Parse(ctx, seg.Text, req.Reference, req.Options)
		if err != nil {
			return nil, classify(ctx, err)
		}
		for _, r := range found {
			r.Index += seg.Offset
			results = append(results, r)
		}
	}

	if filter != nil {
		var err error
		if results, err = filter.Apply(results); err != nil {
			return nil, apierrors.Wrap(err, apierrors.ErrCodeInvalidFilter, "filter evaluation failed")
		}
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		m := NewMatch(r)
		m.Context = s.snippets.Extract(doc.Text, r.Index, r.Index+r.Length())
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *Service) reference(ref time.Time) time.Time {
	if ref.IsZero() {
		return s.now().In(s.config.Location)
	}
	return ref
}

func compileFilter(expr string) (*queryengine.Filter, error) {
	if expr == "" {
		return nil, nil
	}
	filter, err := queryengine.Compile(expr)
	if err != nil {
		return nil, apierrors.InvalidFilter(err)
	}
	return filter, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, datetext.ErrInputTooLong) {
		return apierrors.Wrap(err, apierrors.ErrCodeInputTooLong, "input too long")
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return contextError(ctxErr)
	}
	return apierrors.Wrap(err, apierrors.ErrCodeInternal, "parse failed")
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierrors.Timeout("deadline exceeded")
	}
	return apierrors.ContextCanceled(err)
}
