package output

import (
	"fmt"
	"strings"
)

// TextFormatter formats output as human-readable text
type TextFormatter struct {
	NoColor bool
}

// Format implements FormatProvider.
func (f *TextFormatter) Format() OutputFormat { return FormatText }

// ContentType implements FormatProvider.
func (f *TextFormatter) ContentType() string { return "text/plain; charset=utf-8" }

// FormatSummary formats a summary as a block of labelled lines
func (f *TextFormatter) FormatSummary(s *Summary) ([]byte, error) {
	scheme := DefaultColorScheme()
	if f.NoColor {
		scheme = NoColorScheme()
	}

	var buf strings.Builder
	row := func(label, value string) {
		buf.WriteString(fmt.Sprintf("  %-16s %s\n", label+":", value))
	}

	buf.WriteString(scheme.Title.Sprint("Summary") + "\n")
	row("Total Requests", scheme.Value.Sprint(FormatNumber(int64(s.TotalRequests))))
	row("Uptime", scheme.Value.Sprintf("%.1fs", s.UptimeSeconds))
	row("Average RPS", scheme.Value.Sprintf("%.2f", s.AverageRPS))
	row("Current RPS", scheme.Value.Sprintf("%d", s.CurrentRPS))
	row("Min Latency", scheme.Latency.Sprintf("%.3f ms", s.MinLatencyMs))
	row("Avg Latency", scheme.Latency.Sprintf("%.3f ms", s.AvgLatencyMs))
	row("Max Latency", scheme.Latency.Sprintf("%.3f ms", s.MaxLatencyMs))
	row("P50 / P90 / P99", scheme.Latency.Sprintf("%.3f / %.3f / %.3f ms", s.P50LatencyMs, s.P90LatencyMs, s.P99LatencyMs))

	dropped := scheme.Value
	if s.DroppedEvents > 0 {
		dropped = scheme.Warning
	}
	row("Dropped Events", dropped.Sprint(FormatNumber(int64(s.DroppedEvents))))

	return []byte(buf.String()), nil
}

// FormatResponse formats a response body as a single line
func (f *TextFormatter) FormatResponse(r *Response) ([]byte, error) {
	return []byte(fmt.Sprintf("Request processed in %.3fms (simulated delay: %.3fms)\n",
		r.Timing.ProcessingTimeMs, r.Timing.SimulatedDelayMs)), nil
}

// FormatNumber formats a number with thousands separators.
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	offset := len(str) % 3
	if offset > 0 {
		result.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(str[i : i+3])
	}
	return result.String()
}
