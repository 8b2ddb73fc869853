package metrics

import (
	"sort"
	"time"
)

// Event is the measurement emitted once per completed request.
type Event struct {
	// CompletedAt is when the response was finalized
	CompletedAt time.Time

	// Latency is the time from receipt to response completion
	Latency time.Duration

	// Method, Path and Status are carried for the recent log display only
	Method string
	Path   string
	Status int
}

// ReceivedAt returns when the request was received.
func (e Event) ReceivedAt() time.Time {
	return e.CompletedAt.Add(-e.Latency)
}

// CumulativeStats holds the order-independent reductions over all events.
type CumulativeStats struct {
	TotalRequests uint64        `json:"totalRequests"`
	MinLatency    time.Duration `json:"minLatency"`
	MaxLatency    time.Duration `json:"maxLatency"`
	SumLatency    time.Duration `json:"sumLatency"`
}

// Add folds one latency into the stats.
func (c *CumulativeStats) Add(latency time.Duration) {
	if c.TotalRequests == 0 || latency < c.MinLatency {
		c.MinLatency = latency
	}
	if latency > c.MaxLatency {
		c.MaxLatency = latency
	}
	c.SumLatency += latency
	c.TotalRequests++
}

// AvgLatency returns SumLatency / TotalRequests, or zero with no requests.
func (c CumulativeStats) AvgLatency() time.Duration {
	if c.TotalRequests == 0 {
		return 0
	}
	return c.SumLatency / time.Duration(c.TotalRequests)
}

// LatencyPercentiles contains latency quantiles from the HDR histogram.
type LatencyPercentiles struct {
	P50 time.Duration `json:"p50"`
	P90 time.Duration `json:"p90"`
	P99 time.Duration `json:"p99"`
}

// Snapshot is an immutable, point-in-time copy of the aggregated statistics.
//
// Snapshots are published whole by the Aggregator; readers receive value
// copies and never observe a partially updated snapshot.
type Snapshot struct {
	StartTime time.Time          `json:"startTime"`
	Now       time.Time          `json:"now"`
	Stats     CumulativeStats    `json:"stats"`
	Latency   LatencyPercentiles `json:"latency"`

	// LastLatency is the latency of the most recently aggregated event
	LastLatency time.Duration `json:"lastLatency"`

	// History holds per-second request counts, oldest first. The last
	// element is the second currently in progress.
	History [WindowSize]uint32 `json:"history"`

	// Dropped is the number of events discarded because the event
	// channel was full
	Dropped uint64 `json:"dropped"`
}

// Uptime returns Now - StartTime.
func (s Snapshot) Uptime() time.Duration {
	if s.Now.Before(s.StartTime) {
		return 0
	}
	return s.Now.Sub(s.StartTime)
}

// AverageRPS returns total requests divided by uptime in seconds.
func (s Snapshot) AverageRPS() float64 {
	secs := s.Uptime().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Stats.TotalRequests) / secs
}

// CurrentRPS returns the count of the most recently completed full second.
func (s Snapshot) CurrentRPS() uint32 {
	return s.History[WindowSize-2]
}

// RPSStats summarizes per-second throughput over the completed seconds of
// the history window.
type RPSStats struct {
	Min    uint32  `json:"min"`
	Max    uint32  `json:"max"`
	Avg    float64 `json:"avg"`
	Median uint32  `json:"median"`
	P90    uint32  `json:"p90"`
}

// RPSStats computes throughput statistics over the full seconds in History.
// The in-progress second is excluded and Min ignores idle seconds.
func (s Snapshot) RPSStats() RPSStats {
	data := make([]uint32, WindowSize-1)
	copy(data, s.History[:WindowSize-1])
	sort.Slice(data, func(i, j int) bool { return data[i] < data[j] })

	var st RPSStats
	var sum uint64
	for _, v := range data {
		if v > 0 && st.Min == 0 {
			st.Min = v
		}
		sum += uint64(v)
	}

	n := len(data)
	st.Max = data[n-1]
	st.Avg = float64(sum) / float64(n)
	if n%2 == 1 {
		st.Median = data[n/2]
	} else {
		st.Median = (data[n/2-1] + data[n/2]) / 2
	}

	idx := (n*90 + 99) / 100
	if idx >= n {
		idx = n - 1
	}
	st.P90 = data[idx]

	return st
}

// LogEntry is one row of the recent request log.
type LogEntry struct {
	ReceivedAt time.Time
	Latency    time.Duration
	Method     string
	Path       string
	Status     int
}
