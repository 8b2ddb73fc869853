// Package monitoring exports the aggregated statistics in the Prometheus
// exposition format.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wesleyorama2/ratestub/internal/metrics"
)

const namespace = "ratestub"

// SnapshotSource supplies the latest published snapshot.
type SnapshotSource interface {
	Load() metrics.Snapshot
}

// Collector is a prometheus.Collector reading from a SnapshotSource on
// every scrape. It holds no state of its own.
type Collector struct {
	source SnapshotSource

	requests *prometheus.Desc
	dropped  *prometheus.Desc
	latency  *prometheus.Desc
	rps      *prometheus.Desc
	uptime   *prometheus.Desc
}

// NewCollector creates a Collector for source.
func NewCollector(source SnapshotSource) *Collector {
	return &Collector{
		source: source,
		requests: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "requests_total"),
			"Total number of requests served.", nil, nil),
		dropped: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "events_dropped_total"),
			"Request events discarded because the event channel was full.", nil, nil),
		latency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "request_latency_seconds"),
			"Request latency including the simulated delay.", nil, nil),
		rps: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "requests_last_second"),
			"Requests completed in the most recent full second.", nil, nil),
		uptime: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "uptime_seconds"),
			"Seconds since the server started.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.dropped
	ch <- c.latency
	ch <- c.rps
	ch <- c.uptime
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Load()

	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(snap.Stats.TotalRequests))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(snap.Dropped))
	ch <- prometheus.MustNewConstSummary(c.latency,
		snap.Stats.TotalRequests,
		snap.Stats.SumLatency.Seconds(),
		map[float64]float64{
			0.5:  snap.Latency.P50.Seconds(),
			0.9:  snap.Latency.P90.Seconds(),
			0.99: snap.Latency.P99.Seconds(),
		},
	)
	ch <- prometheus.MustNewConstMetric(c.rps, prometheus.GaugeValue, float64(snap.CurrentRPS()))
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, snap.Uptime().Seconds())
}

// Handler returns an HTTP handler exposing source on its own registry.
func Handler(source SnapshotSource) (http.Handler, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector(source)); err != nil {
		return nil, fmt.Errorf("register collector: %w", err)
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{DisableCompression: true}), nil
}

// Serve exposes /metrics on ln until ctx is cancelled.
func Serve(ctx context.Context, ln net.Listener, source SnapshotSource, logger *zap.Logger) error {
	handler, err := Handler(source)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logger.Info("Metrics exporter listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
	}
	<-errCh
	return nil
}
