// Package metrics aggregates request counts and latencies in hourly buckets.
package metrics

import (
	"sort"
	"sync"
	"time"
)

const (
	// Retention is how long hourly buckets are kept.
	Retention = 30 * 24 * time.Hour
	// maxSamples caps the latencies kept per bucket for percentiles.
	maxSamples = 10000
)

// Aggregator aggregates metrics in memory. Safe for concurrent use.
type Aggregator struct {
	mu  sync.RWMutex
	now func() time.Time

	// key = "hourBucket|operation"
	buckets map[string]*bucket
}

type bucket struct {
	hourBucket   time.Time
	operation    string
	requestCount int64
	successCount int64
	latencySum   int64   // in milliseconds
	latencies    []int64 // in milliseconds, at most maxSamples
}

// OperationStat summarises one operation.
type OperationStat struct {
	Count       int64         `json:"count"`
	SuccessRate float64       `json:"success_rate"`
	AvgLatency  time.Duration `json:"avg_latency"`
}

// Overview summarises every operation recorded since some instant.
type Overview struct {
	RequestCount int64
	SuccessCount int64
	AvgLatency   time.Duration
	LatencyP50   time.Duration
	LatencyP95   time.Duration
	Operations   map[string]*OperationStat
}

// ErrorCount returns the number of unsuccessful requests.
func (o *Overview) ErrorCount() int64 {
	return o.RequestCount - o.SuccessCount
}

// SuccessRate returns the successful share of requests, or 0 with none.
func (o *Overview) SuccessRate() float64 {
	if o.RequestCount == 0 {
		return 0
	}
	return float64(o.SuccessCount) / float64(o.RequestCount)
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Record records a single request.
func (a *Aggregator) Record(operation string, latency time.Duration, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	hourBucket := truncateToHour(now)
	key := makeKey(hourBucket, operation)

	b, exists := a.buckets[key]
	if !exists {
		a.prune(now)
		b = &bucket{
			hourBucket: hourBucket,
			operation:  operation,
			latencies:  make([]int64, 0, 64),
		}
		a.buckets[key] = b
	}

	ms := latency.Milliseconds()
	b.requestCount++
	if success {
		b.successCount++
	}
	b.latencySum += ms
	if len(b.latencies) < maxSamples {
		b.latencies = append(b.latencies, ms)
	}
}

// Overview aggregates every bucket whose hour ends after since.
func (a *Aggregator) Overview(since time.Time) *Overview {
	a.mu.RLock()
	defer a.mu.RUnlock()

	o := &Overview{Operations: make(map[string]*OperationStat)}
	sums := make(map[string]int64)
	var latencySum int64
	all := make([]int64, 0)
	for _, b := range a.buckets {
		if !b.hourBucket.Add(time.Hour).After(since) {
			continue
		}
		o.RequestCount += b.requestCount
		o.SuccessCount += b.successCount
		latencySum += b.latencySum
		all = append(all, b.latencies...)

		stat, ok := o.Operations[b.operation]
		if !ok {
			stat = &OperationStat{}
			o.Operations[b.operation] = stat
		}
		stat.Count += b.requestCount
		stat.SuccessRate += float64(b.successCount)
		sums[b.operation] += b.latencySum
	}

	for op, stat := range o.Operations {
		if stat.Count > 0 {
			stat.SuccessRate /= float64(stat.Count)
			stat.AvgLatency = time.Duration(sums[op]/stat.Count) * time.Millisecond
		}
	}
	if o.RequestCount > 0 {
		o.AvgLatency = time.Duration(latencySum/o.RequestCount) * time.Millisecond
	}
	o.LatencyP50 = time.Duration(percentile(all, 50)) * time.Millisecond
	o.LatencyP95 = time.Duration(percentile(all, 95)) * time.Millisecond
	return o
}

// prune must be called with the write lock held.
func (a *Aggregator) prune(now time.Time) {
	cutoff := now.Add(-Retention)
	for key, b := range a.buckets {
		if b.hourBucket.Before(cutoff) {
			delete(a.buckets, key)
		}
	}
}

func truncateToHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

func makeKey(hourBucket time.Time, operation string) string {
	return hourBucket.Format(time.RFC3339) + "|" + operation
}

func percentile(latencies []int64, p int) int64 {
	if len(latencies) == 0 {
		return 0
	}

	sorted := make([]int64, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}
