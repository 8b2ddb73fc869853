package metrics

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestCumulativeStats_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	latencies := make([]time.Duration, 500)
	var sum time.Duration
	minL, maxL := time.Duration(math.MaxInt64), time.Duration(0)
	for i := range latencies {
		d := time.Duration(rng.Intn(200_000)) * time.Microsecond
		latencies[i] = d
		sum += d
		if d < minL {
			minL = d
		}
		if d > maxL {
			maxL = d
		}
	}
	wantAvg := sum / time.Duration(len(latencies))

	for trial := 0; trial < 10; trial++ {
		rng.Shuffle(len(latencies), func(i, j int) {
			latencies[i], latencies[j] = latencies[j], latencies[i]
		})

		var c CumulativeStats
		for _, d := range latencies {
			c.Add(d)
		}

		if c.TotalRequests != uint64(len(latencies)) {
			t.Errorf("TotalRequests = %d, want %d", c.TotalRequests, len(latencies))
		}
		if c.MinLatency != minL {
			t.Errorf("MinLatency = %v, want %v", c.MinLatency, minL)
		}
		if c.MaxLatency != maxL {
			t.Errorf("MaxLatency = %v, want %v", c.MaxLatency, maxL)
		}
		if c.AvgLatency() != wantAvg {
			t.Errorf("AvgLatency() = %v, want %v", c.AvgLatency(), wantAvg)
		}
	}
}

func TestCumulativeStats_Empty(t *testing.T) {
	var c CumulativeStats
	if c.AvgLatency() != 0 {
		t.Errorf("AvgLatency() on empty stats = %v, want 0", c.AvgLatency())
	}
}

func TestCumulativeStats_ZeroLatencyIsMin(t *testing.T) {
	var c CumulativeStats
	c.Add(5 * time.Millisecond)
	c.Add(0)
	if c.MinLatency != 0 {
		t.Errorf("MinLatency = %v, want 0", c.MinLatency)
	}
}

func TestSnapshot_RPSStats(t *testing.T) {
	// 59 completed seconds followed by the in-progress second
	counts := []uint32{
		5, 3, 8, 2, 7, 1, 4, 4, 6, 8, 7, 2, 2, 3, 5, 4, 4, 7, 1, 7, 5, 9, 9, 8, 9, 5, 9, 2,
		7, 6, 8, 1, 1, 2, 8, 7, 4, 2, 7, 11, 6, 6, 5, 6, 2, 3, 2, 8, 7, 1, 5, 7, 3, 4, 5, 6, 5,
		5, 3, 0,
	}
	var snap Snapshot
	copy(snap.History[:], counts)

	st := snap.RPSStats()

	if st.Min != 1 {
		t.Errorf("Min = %d, want 1", st.Min)
	}
	if st.Max != 11 {
		t.Errorf("Max = %d, want 11", st.Max)
	}
	if st.Median != 5 {
		t.Errorf("Median = %d, want 5", st.Median)
	}
	if math.Round(st.Avg) != 5 {
		t.Errorf("Avg = %.2f, want ~5", st.Avg)
	}
	if st.P90 != 9 {
		t.Errorf("P90 = %d, want 9", st.P90)
	}
	if st.P90 < st.Median || st.P90 > st.Max {
		t.Errorf("P90 = %d not between median %d and max %d", st.P90, st.Median, st.Max)
	}
}

func TestSnapshot_RPSStatsIgnoresCurrentSecond(t *testing.T) {
	var snap Snapshot
	snap.History[WindowSize-1] = 1000

	st := snap.RPSStats()
	if st.Max != 0 || st.Min != 0 {
		t.Errorf("RPSStats() = %+v, want in-progress second excluded", st)
	}
}

func TestSnapshot_Derived(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(10 * time.Second),
		Stats:     CumulativeStats{TotalRequests: 250},
	}
	snap.History[WindowSize-2] = 42
	snap.History[WindowSize-1] = 7

	if snap.Uptime() != 10*time.Second {
		t.Errorf("Uptime() = %v, want 10s", snap.Uptime())
	}
	if snap.AverageRPS() != 25 {
		t.Errorf("AverageRPS() = %v, want 25", snap.AverageRPS())
	}
	if snap.CurrentRPS() != 42 {
		t.Errorf("CurrentRPS() = %d, want 42", snap.CurrentRPS())
	}

	var empty Snapshot
	if empty.AverageRPS() != 0 {
		t.Errorf("AverageRPS() with zero uptime = %v, want 0", empty.AverageRPS())
	}
}

func TestEvent_ReceivedAt(t *testing.T) {
	done := time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)
	ev := Event{CompletedAt: done, Latency: 250 * time.Millisecond}

	if got := ev.ReceivedAt(); !got.Equal(done.Add(-250 * time.Millisecond)) {
		t.Errorf("ReceivedAt() = %v", got)
	}
}
