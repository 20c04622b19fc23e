package datetext

import (
	"context"
	"sync"
	"time"
)

// MockTimeService is a mock implementation of TimeService for testing.
type MockTimeService struct {
	// FixedNow replaces a zero reference.
	FixedNow *time.Time
	// Results holds canned answers keyed by input text. Inputs without an
	// entry fall through to the real parser.
	Results map[string][]Result
	// Err, when set, is returned by every call.
	Err error

	mu    sync.Mutex
	calls []string
}

// NewMockTimeService creates a new MockTimeService.
func NewMockTimeService() *MockTimeService {
	return &MockTimeService{Results: make(map[string][]Result)}
}

// Calls returns the inputs seen so far, in call order.
func (m *MockTimeService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Parse returns the canned result for text, or parses it for real.
func (m *MockTimeService) Parse(ctx context.Context, text string, reference time.Time, opts Options) ([]Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	canned, ok := m.Results[text]
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if ok {
		return canned, nil
	}
	if reference.IsZero() {
		reference = m.now()
	}
	return NewParser(opts).Parse(ctx, text, reference)
}

// ParseDate returns the start of the first result.
func (m *MockTimeService) ParseDate(ctx context.Context, text string, reference time.Time, opts Options) (time.Time, error) {
	results, err := m.Parse(ctx, text, reference, opts)
	if err != nil {
		return time.Time{}, err
	}
	if len(results) == 0 {
		return time.Time{}, ErrNoMatch
	}
	return results[0].Start.Time, nil
}

func (m *MockTimeService) now() time.Time {
	if m.FixedNow != nil {
		return *m.FixedNow
	}
	return time.Now()
}

// Ensure MockTimeService implements TimeService
var _ TimeService = (*MockTimeService)(nil)
