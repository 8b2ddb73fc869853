// Package metrics aggregates per-request measurements into live statistics.
//
// Request handlers emit Events through an Emitter; a single Aggregator
// goroutine consumes them, owns all mutable statistics, and publishes
// immutable Snapshots to a Store. The RecentLog keeps the last few requests
// for display.
package metrics

import (
	"context"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"
)

// AggregatorConfig contains configuration for the Aggregator.
type AggregatorConfig struct {
	// TickInterval is how often a snapshot is published without traffic
	// (default: 250ms)
	TickInterval time.Duration

	// MaxBatch is the maximum number of buffered events applied before a
	// snapshot is published (default: 256)
	MaxBatch int

	// HistogramMin is the minimum recordable latency in microseconds (default: 1)
	HistogramMin int64

	// HistogramMax is the maximum recordable latency in microseconds
	// (default: 3600000000 = 1 hour)
	HistogramMax int64

	// HistogramSigFigs is the number of significant figures (default: 3)
	HistogramSigFigs int

	// Clock returns the current time (default: time.Now)
	Clock func() time.Time

	// Logger receives lifecycle messages (default: no-op)
	Logger *zap.Logger
}

// DefaultAggregatorConfig returns the default configuration.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		TickInterval:     250 * time.Millisecond,
		MaxBatch:         256,
		HistogramMin:     1,
		HistogramMax:     3600000000,
		HistogramSigFigs: 3,
		Clock:            time.Now,
		Logger:           zap.NewNop(),
	}
}

// Aggregator is the single consumer of request events.
//
// It exclusively owns the cumulative statistics, the rolling window and the
// latency histogram; none of them is shared. Results leave the Aggregator
// only as Snapshots published to the Store and entries recorded in the
// RecentLog.
type Aggregator struct {
	emitter *Emitter
	store   *Store
	recent  *RecentLog
	start   time.Time
	config  AggregatorConfig

	stats  CumulativeStats
	last   time.Duration
	window Window
	hist   *hdrhistogram.Histogram
}

// NewAggregator creates an Aggregator reading from emitter.
func NewAggregator(emitter *Emitter, store *Store, recent *RecentLog, start time.Time, config AggregatorConfig) *Aggregator {
	def := DefaultAggregatorConfig()
	if config.TickInterval <= 0 {
		config.TickInterval = def.TickInterval
	}
	if config.MaxBatch <= 0 {
		config.MaxBatch = def.MaxBatch
	}
	if config.HistogramMin <= 0 {
		config.HistogramMin = def.HistogramMin
	}
	if config.HistogramMax <= config.HistogramMin {
		config.HistogramMax = def.HistogramMax
	}
	if config.HistogramSigFigs <= 0 {
		config.HistogramSigFigs = def.HistogramSigFigs
	}
	if config.Clock == nil {
		config.Clock = def.Clock
	}
	if config.Logger == nil {
		config.Logger = def.Logger
	}

	return &Aggregator{
		emitter: emitter,
		store:   store,
		recent:  recent,
		start:   start,
		config:  config,
		hist:    hdrhistogram.New(config.HistogramMin, config.HistogramMax, config.HistogramSigFigs),
	}
}

// Run consumes events until the emitter is closed or ctx is cancelled.
//
// In both cases the events still buffered are applied and one final
// snapshot is published before Run returns.
func (a *Aggregator) Run(ctx context.Context) {
	logger := a.config.Logger
	logger.Debug("aggregator started", zap.Duration("tick", a.config.TickInterval))

	ticker := time.NewTicker(a.config.TickInterval)
	defer ticker.Stop()

	events := a.emitter.Events()

	defer func() {
		a.publish()
		logger.Debug("aggregator stopped",
			zap.Uint64("total_requests", a.stats.TotalRequests),
			zap.Uint64("dropped_events", a.emitter.Dropped()))
	}()

	for {
		select {
		case <-ctx.Done():
			a.drain(events, -1)
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			a.apply(ev)
			if closed := a.drain(events, a.config.MaxBatch); closed {
				return
			}
			a.publish()

		case <-ticker.C:
			a.publish()
		}
	}
}

// drain applies buffered events without blocking, at most limit of them
// (unlimited when limit < 0). It reports whether the channel was closed.
func (a *Aggregator) drain(events <-chan Event, limit int) bool {
	for n := 0; limit < 0 || n < limit; n++ {
		select {
		case ev, ok := <-events:
			if !ok {
				return true
			}
			a.apply(ev)
		default:
			return false
		}
	}
	return false
}

// second maps t to whole seconds since start.
func (a *Aggregator) second(t time.Time) int64 {
	d := t.Sub(a.start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

func (a *Aggregator) apply(ev Event) {
	a.stats.Add(ev.Latency)
	a.last = ev.Latency

	micros := ev.Latency.Microseconds()
	if micros < a.config.HistogramMin {
		micros = a.config.HistogramMin
	}
	if micros > a.config.HistogramMax {
		micros = a.config.HistogramMax
	}
	_ = a.hist.RecordValue(micros)

	a.window.Add(a.second(ev.CompletedAt))

	if a.recent != nil {
		a.recent.Record(LogEntry{
			ReceivedAt: ev.ReceivedAt(),
			Latency:    ev.Latency,
			Method:     ev.Method,
			Path:       ev.Path,
			Status:     ev.Status,
		})
	}
}

// snapshot builds a new immutable snapshot of the current state.
func (a *Aggregator) snapshot() *Snapshot {
	now := a.config.Clock()

	snap := &Snapshot{
		StartTime:   a.start,
		Now:         now,
		Stats:       a.stats,
		LastLatency: a.last,
		History:     a.window.History(a.second(now)),
		Dropped:     a.emitter.Dropped(),
	}
	if a.stats.TotalRequests > 0 {
		snap.Latency = LatencyPercentiles{
			P50: time.Duration(a.hist.ValueAtQuantile(50)) * time.Microsecond,
			P90: time.Duration(a.hist.ValueAtQuantile(90)) * time.Microsecond,
			P99: time.Duration(a.hist.ValueAtQuantile(99)) * time.Microsecond,
		}
	}
	return snap
}

func (a *Aggregator) publish() {
	a.store.Publish(a.snapshot())
}
