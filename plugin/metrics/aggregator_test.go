package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(start time.Time) (*Aggregator, *time.Time) {
	now := start
	a := NewAggregator()
	a.now = func() time.Time { return now }
	return a, &now
}

func TestAggregator_Overview(t *testing.T) {
	start := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	a, _ := newTestAggregator(start)

	a.Record("POST /api/v1/parse", 10*time.Millisecond, true)
	a.Record("POST /api/v1/parse", 30*time.Millisecond, true)
	a.Record("POST /api/v1/parse", 50*time.Millisecond, false)
	a.Record("GET /api/v1/info", 2*time.Millisecond, true)

	o := a.Overview(start.Add(-time.Hour))
	assert.EqualValues(t, 4, o.RequestCount)
	assert.EqualValues(t, 3, o.SuccessCount)
	assert.EqualValues(t, 1, o.ErrorCount())
	assert.InDelta(t, 0.75, o.SuccessRate(), 1e-9)
	assert.Equal(t, 23*time.Millisecond, o.AvgLatency)
	assert.Equal(t, 10*time.Millisecond, o.LatencyP50)
	assert.Equal(t, 30*time.Millisecond, o.LatencyP95)

	require.Contains(t, o.Operations, "POST /api/v1/parse")
	parse := o.Operations["POST /api/v1/parse"]
	assert.EqualValues(t, 3, parse.Count)
	assert.InDelta(t, 2.0/3.0, parse.SuccessRate, 1e-9)
	assert.Equal(t, 30*time.Millisecond, parse.AvgLatency)
}

func TestAggregator_OverviewWindow(t *testing.T) {
	start := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	a, now := newTestAggregator(start)

	a.Record("op", time.Millisecond, true)
	*now = start.Add(3 * time.Hour)
	a.Record("op", time.Millisecond, true)

	assert.EqualValues(t, 1, a.Overview(now.Add(-time.Hour)).RequestCount)
	assert.EqualValues(t, 2, a.Overview(now.Add(-24*time.Hour)).RequestCount)
}

func TestAggregator_Empty(t *testing.T) {
	o := NewAggregator().Overview(time.Time{})
	assert.Zero(t, o.RequestCount)
	assert.Zero(t, o.SuccessRate())
	assert.Zero(t, o.LatencyP95)
	assert.Empty(t, o.Operations)
}

func TestAggregator_Prune(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, now := newTestAggregator(start)

	a.Record("op", time.Millisecond, true)
	*now = start.Add(Retention + 2*time.Hour)
	a.Record("op", time.Millisecond, true)

	assert.Len(t, a.buckets, 1)
	assert.EqualValues(t, 1, a.Overview(time.Time{}).RequestCount)
}

func TestAggregator_Concurrent(t *testing.T) {
	a := NewAggregator()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				a.Record("op", time.Millisecond, j%2 == 0)
			}
		}()
	}
	wg.Wait()

	o := a.Overview(time.Now().Add(-time.Hour))
	assert.EqualValues(t, 800, o.RequestCount)
	assert.EqualValues(t, 400, o.SuccessCount)
}

func TestPercentile(t *testing.T) {
	assert.Zero(t, percentile(nil, 50))
	assert.EqualValues(t, 5, percentile([]int64{9, 1, 5, 3, 7}, 50))
	assert.EqualValues(t, 7, percentile([]int64{9, 1, 5, 3, 7}, 95))
	assert.EqualValues(t, 9, percentile([]int64{9, 1, 5, 3, 7}, 100))
}
