// Package output renders statistics snapshots and stub responses in the
// configured format.
package output

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wesleyorama2/ratestub/internal/metrics"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatText is the human-readable text format
	FormatText OutputFormat = "text"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ErrInvalidFormat is returned for unknown format names.
var ErrInvalidFormat = errors.New("invalid format")

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w %q: valid formats: json, text, yaml", ErrInvalidFormat, s)
	}
}

// FormatProvider renders summaries and response bodies in one format.
//
// A provider is chosen once at startup and used everywhere a snapshot or
// response is rendered.
type FormatProvider interface {
	Format() OutputFormat
	ContentType() string
	FormatSummary(s *Summary) ([]byte, error)
	FormatResponse(r *Response) ([]byte, error)
}

// GetFormatter returns the provider for the given format.
func GetFormatter(format OutputFormat, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{NoColor: noColor}
	}
}

// Summary is the shutdown (or periodic) report of a snapshot.
type Summary struct {
	TotalRequests uint64  `json:"total_requests" yaml:"total_requests"`
	MinLatencyMs  float64 `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms" yaml:"max_latency_ms"`
	AvgLatencyMs  float64 `json:"avg_latency_ms" yaml:"avg_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms" yaml:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms" yaml:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms" yaml:"p99_latency_ms"`
	UptimeSeconds float64 `json:"uptime_seconds" yaml:"uptime_seconds"`
	AverageRPS    float64 `json:"average_rps" yaml:"average_rps"`
	CurrentRPS    uint32  `json:"current_rps" yaml:"current_rps"`
	DroppedEvents uint64  `json:"dropped_events" yaml:"dropped_events"`
}

// NewSummary builds a Summary from a snapshot.
func NewSummary(snap metrics.Snapshot) *Summary {
	return &Summary{
		TotalRequests: snap.Stats.TotalRequests,
		MinLatencyMs:  millis(snap.Stats.MinLatency),
		MaxLatencyMs:  millis(snap.Stats.MaxLatency),
		AvgLatencyMs:  millis(snap.Stats.AvgLatency()),
		P50LatencyMs:  millis(snap.Latency.P50),
		P90LatencyMs:  millis(snap.Latency.P90),
		P99LatencyMs:  millis(snap.Latency.P99),
		UptimeSeconds: round3(snap.Uptime().Seconds()),
		AverageRPS:    round3(snap.AverageRPS()),
		CurrentRPS:    snap.CurrentRPS(),
		DroppedEvents: snap.Dropped,
	}
}

// Response is the body returned by the stub endpoint.
type Response struct {
	Status  string         `json:"status" yaml:"status"`
	Request RequestData    `json:"request" yaml:"request"`
	Timing  ResponseTiming `json:"timing" yaml:"timing"`
}

// RequestData describes the request being answered.
type RequestData struct {
	Path      string `json:"path" yaml:"path"`
	Method    string `json:"method" yaml:"method"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

// ResponseTiming reports the time spent and the delay imposed.
type ResponseTiming struct {
	ProcessingTimeMs float64 `json:"processing_time_ms" yaml:"processing_time_ms"`
	SimulatedDelayMs float64 `json:"simulated_delay_ms" yaml:"simulated_delay_ms"`
}

// NewResponse builds the response body for a request received at
// receivedAt that took processing in total with the given imposed delay.
func NewResponse(method, path string, receivedAt time.Time, processing, delay time.Duration) *Response {
	return &Response{
		Status: "success",
		Request: RequestData{
			Path:      path,
			Method:    method,
			Timestamp: receivedAt.Unix(),
		},
		Timing: ResponseTiming{
			ProcessingTimeMs: millis(processing),
			SimulatedDelayMs: millis(delay),
		},
	}
}

// millis converts d to milliseconds with microsecond precision.
func millis(d time.Duration) float64 {
	return round3(float64(d) / float64(time.Millisecond))
}

func round3(f float64) float64 {
	if f < 0 {
		return -round3(-f)
	}
	return float64(int64(f*1000+0.5)) / 1000
}
