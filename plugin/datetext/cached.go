package datetext

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/datesense/plugin/cache"
)

// CachedTimeService memoizes Parse results of another TimeService.
// Calls with a zero reference depend on the clock and are never cached.
type CachedTimeService struct {
	next  TimeService
	cache *cache.LRU[[]Result]
	ttl   time.Duration
}

// NewCachedTimeService wraps next with an LRU of the given size and TTL.
func NewCachedTimeService(next TimeService, size int, ttl time.Duration) *CachedTimeService {
	return &CachedTimeService{
		next:  next,
		cache: cache.NewLRU[[]Result](size, ttl),
		ttl:   ttl,
	}
}

// Parse returns a cached copy of the results when the same text, reference
// and options were parsed before.
func (s *CachedTimeService) Parse(ctx context.Context, text string, reference time.Time, opts Options) ([]Result, error) {
	if reference.IsZero() {
		return s.next.Parse(ctx, text, reference, opts)
	}

	key := cacheKey(text, reference, opts)
	if results, ok := s.cache.Get(key); ok {
		return append([]Result(nil), results...), nil
	}

	results, err := s.next.Parse(ctx, text, reference, opts)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, append([]Result(nil), results...), s.ttl)
	return results, nil
}

// ParseDate returns the start of the first result.
func (s *CachedTimeService) ParseDate(ctx context.Context, text string, reference time.Time, opts Options) (time.Time, error) {
	results, err := s.Parse(ctx, text, reference, opts)
	if err != nil {
		return time.Time{}, err
	}
	if len(results) == 0 {
		return time.Time{}, ErrNoMatch
	}
	return results[0].Start.Time, nil
}

// Len returns the number of cached entries.
func (s *CachedTimeService) Len() int {
	return s.cache.Len()
}

// Purge drops expired entries.
func (s *CachedTimeService) Purge() int {
	return s.cache.CleanupExpired()
}

// Run purges expired entries every interval until ctx is done.
func (s *CachedTimeService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = cache.DefaultTTL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Purge()
		}
	}
}

func cacheKey(text string, reference time.Time, opts Options) string {
	_, offset := reference.Zone()
	var b strings.Builder
	b.WriteString(opts.Locale)
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(opts.Strict))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(opts.ForwardDate))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(reference.UnixNano(), 10))
	b.WriteByte('|')
	b.WriteString(reference.Location().String())
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(offset))
	b.WriteByte('|')
	b.WriteString(text)
	return b.String()
}

// Ensure CachedTimeService implements TimeService
var _ TimeService = (*CachedTimeService)(nil)
