package output

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/ratestub/internal/metrics"
)

func testSnapshot() metrics.Snapshot {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := metrics.Snapshot{
		StartTime: start,
		Now:       start.Add(10 * time.Second),
		Stats: metrics.CumulativeStats{
			TotalRequests: 1234,
			MinLatency:    1500 * time.Microsecond,
			MaxLatency:    150 * time.Millisecond,
			SumLatency:    1234 * 40 * time.Millisecond,
		},
		Latency: metrics.LatencyPercentiles{
			P50: 35 * time.Millisecond,
			P90: 120 * time.Millisecond,
			P99: 148 * time.Millisecond,
		},
		Dropped: 7,
	}
	snap.History[metrics.WindowSize-2] = 98
	return snap
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" text ", FormatText, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrInvalidFormat", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetFormatter(t *testing.T) {
	assert.Equal(t, FormatJSON, GetFormatter(FormatJSON, false).Format())
	assert.Equal(t, FormatYAML, GetFormatter(FormatYAML, false).Format())
	assert.Equal(t, FormatText, GetFormatter(FormatText, false).Format())
	assert.Equal(t, FormatText, GetFormatter("unknown", false).Format())

	assert.Equal(t, "application/json", GetFormatter(FormatJSON, false).ContentType())
	assert.True(t, strings.HasPrefix(GetFormatter(FormatText, false).ContentType(), "text/plain"))
}

func TestNewSummary(t *testing.T) {
	s := NewSummary(testSnapshot())

	assert.Equal(t, uint64(1234), s.TotalRequests)
	assert.Equal(t, 1.5, s.MinLatencyMs)
	assert.Equal(t, 150.0, s.MaxLatencyMs)
	assert.Equal(t, 40.0, s.AvgLatencyMs)
	assert.Equal(t, 120.0, s.P90LatencyMs)
	assert.Equal(t, 10.0, s.UptimeSeconds)
	assert.Equal(t, 123.4, s.AverageRPS)
	assert.Equal(t, uint32(98), s.CurrentRPS)
	assert.Equal(t, uint64(7), s.DroppedEvents)
}

func TestNewSummary_Empty(t *testing.T) {
	start := time.Now()
	s := NewSummary(metrics.Snapshot{StartTime: start, Now: start})

	assert.Zero(t, s.TotalRequests)
	assert.Zero(t, s.AvgLatencyMs)
	assert.Zero(t, s.AverageRPS)
}

func TestJSONFormatter_Summary(t *testing.T) {
	out, err := (&JSONFormatter{}).FormatSummary(NewSummary(testSnapshot()))
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(out))

	doc := gjson.ParseBytes(out)
	assert.Equal(t, int64(1234), doc.Get("total_requests").Int())
	assert.Equal(t, 1.5, doc.Get("min_latency_ms").Float())
	assert.Equal(t, 150.0, doc.Get("max_latency_ms").Float())
	assert.Equal(t, 40.0, doc.Get("avg_latency_ms").Float())
	assert.Equal(t, 10.0, doc.Get("uptime_seconds").Float())
	assert.Equal(t, 123.4, doc.Get("average_rps").Float())
	assert.Equal(t, int64(7), doc.Get("dropped_events").Int())
}

func TestJSONFormatter_Response(t *testing.T) {
	received := time.Unix(1767268800, 0)
	resp := NewResponse("POST", "/api/orders", received, 52*time.Millisecond+250*time.Microsecond, 50*time.Millisecond)

	out, err := (&JSONFormatter{Pretty: true}).FormatResponse(resp)
	require.NoError(t, err)

	doc := gjson.ParseBytes(out)
	assert.Equal(t, "success", doc.Get("status").String())
	assert.Equal(t, "/api/orders", doc.Get("request.path").String())
	assert.Equal(t, "POST", doc.Get("request.method").String())
	assert.Equal(t, int64(1767268800), doc.Get("request.timestamp").Int())
	assert.Equal(t, 52.25, doc.Get("timing.processing_time_ms").Float())
	assert.Equal(t, 50.0, doc.Get("timing.simulated_delay_ms").Float())
}

func TestYAMLFormatter(t *testing.T) {
	out, err := (&YAMLFormatter{}).FormatSummary(NewSummary(testSnapshot()))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, 1234, decoded["total_requests"])
	assert.Equal(t, 123.4, decoded["average_rps"])

	out, err = (&YAMLFormatter{}).FormatResponse(NewResponse("GET", "/", time.Now(), time.Millisecond, 0))
	require.NoError(t, err)
	assert.Contains(t, string(out), "status: success")
	assert.Contains(t, string(out), "method: GET")
}

func TestTextFormatter_Summary(t *testing.T) {
	out, err := (&TextFormatter{NoColor: true}).FormatSummary(NewSummary(testSnapshot()))
	require.NoError(t, err)

	text := string(out)
	normalized := strings.Join(strings.Fields(text), " ")
	for _, want := range []string{
		"Summary",
		"Total Requests: 1,234",
		"Uptime: 10.0s",
		"Average RPS: 123.40",
		"Current RPS: 98",
		"Min Latency: 1.500 ms",
		"Max Latency: 150.000 ms",
		"P50 / P90 / P99: 35.000 / 120.000 / 148.000 ms",
		"Dropped Events: 7",
	} {
		if !strings.Contains(normalized, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
	assert.NotContains(t, text, "\x1b[")
}

func TestTextFormatter_Response(t *testing.T) {
	out, err := (&TextFormatter{}).FormatResponse(NewResponse("GET", "/", time.Now(), 12*time.Millisecond, 10*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "Request processed in 12.000ms (simulated delay: 10.000ms)\n", string(out))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestStatusColor(t *testing.T) {
	scheme := DefaultColorScheme()
	assert.Same(t, scheme.Success, scheme.StatusColor(200))
	assert.Same(t, scheme.Warning, scheme.StatusColor(404))
	assert.Same(t, scheme.Error, scheme.StatusColor(503))
}
