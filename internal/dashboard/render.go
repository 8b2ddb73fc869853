package dashboard

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wesleyorama2/ratestub/internal/metrics"
	"github.com/wesleyorama2/ratestub/internal/output"
)

// Box drawing characters
const (
	boxHorizontal  = "━"
	boxVertical    = "│"
	boxTopLeft     = "┌"
	boxTopRight    = "┐"
	boxBottomLeft  = "└"
	boxBottomRight = "┘"

	boxWidth    = 64
	graphHeight = 8
)

// Partial bar glyphs in eighths.
var barGlyphs = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// frame is everything one redraw needs.
type frame struct {
	snap    metrics.Snapshot
	entries []metrics.LogEntry
	url     string
	delay   string
	maxLogs int
}

type renderer struct {
	scheme *output.ColorScheme
}

func newRenderer(noColor bool) *renderer {
	if noColor {
		return &renderer{scheme: output.NoColorScheme()}
	}
	return &renderer{scheme: output.DefaultColorScheme()}
}

// render draws a whole screen.
func (r *renderer) render(f frame) string {
	var lines []string
	lines = append(lines, r.header(f)...)
	lines = append(lines, "")
	lines = append(lines, r.statsBox(f.snap)...)
	lines = append(lines, "")
	lines = append(lines, r.rpsPanel(f.snap)...)
	lines = append(lines, "")
	lines = append(lines, r.graph(f.snap.History)...)
	lines = append(lines, "")
	lines = append(lines, r.recent(f.entries, f.maxLogs)...)
	lines = append(lines, "")
	lines = append(lines, r.scheme.Dim.Sprint("Press q to quit"))
	return strings.Join(lines, "\n")
}

func (r *renderer) header(f frame) []string {
	line := strings.Repeat(boxHorizontal, boxWidth)
	return []string{
		r.scheme.Title.Sprint(line),
		fmt.Sprintf("%s - %s  %s",
			r.scheme.Title.Sprint("ratestub"),
			r.scheme.Success.Sprint("Running"),
			r.scheme.Dim.Sprintf("%s  delay %s", f.url, f.delay)),
		r.scheme.Title.Sprint(line),
	}
}

func (r *renderer) statsBox(snap metrics.Snapshot) []string {
	s := r.scheme
	stats := snap.Stats

	dropped := s.Value
	if snap.Dropped > 0 {
		dropped = s.Warning
	}

	rows := [][2]string{
		{
			"RPS:      " + s.RPS.Sprint(snap.CurrentRPS()),
			"Requests:  " + s.Value.Sprint(output.FormatNumber(int64(stats.TotalRequests))),
		},
		{
			"Uptime:   " + s.Value.Sprint(formatUptime(snap.Uptime())),
			"Avg RPS:   " + s.Value.Sprintf("%.2f", snap.AverageRPS()),
		},
		{
			"Min:      " + s.Latency.Sprint(formatLatency(stats.MinLatency)),
			"Max:       " + s.Latency.Sprint(formatLatency(stats.MaxLatency)),
		},
		{
			"Avg:      " + s.Latency.Sprint(formatLatency(stats.AvgLatency())),
			"P50:       " + s.Latency.Sprint(formatLatency(snap.Latency.P50)),
		},
		{
			"P90:      " + s.Latency.Sprint(formatLatency(snap.Latency.P90)),
			"P99:       " + s.Latency.Sprint(formatLatency(snap.Latency.P99)),
		},
		{
			"Dropped:  " + dropped.Sprint(output.FormatNumber(int64(snap.Dropped))),
			"Last:      " + s.Latency.Sprint(formatLatency(snap.LastLatency)),
		},
	}

	lines := []string{s.Dim.Sprint(boxTopLeft + strings.Repeat(boxHorizontal, boxWidth-2) + boxTopRight)}
	for _, row := range rows {
		lines = append(lines, r.formatBoxRow(row[0], row[1], boxWidth))
	}
	lines = append(lines, s.Dim.Sprint(boxBottomLeft+strings.Repeat(boxHorizontal, boxWidth-2)+boxBottomRight))
	return lines
}

func (r *renderer) rpsPanel(snap metrics.Snapshot) []string {
	st := snap.RPSStats()
	v := r.scheme.Value
	return []string{
		r.scheme.Title.Sprint("Requests per second (last 60s)"),
		fmt.Sprintf("  Min %s  Max %s  Avg %s  Median %s  P90 %s",
			v.Sprint(st.Min), v.Sprint(st.Max), v.Sprintf("%.1f", st.Avg), v.Sprint(st.Median), v.Sprint(st.P90)),
	}
}

// graph draws History as vertical bars, oldest on the left.
func (r *renderer) graph(history [metrics.WindowSize]uint32) []string {
	var peak uint32
	for _, c := range history {
		if c > peak {
			peak = c
		}
	}

	labelWidth := len(fmt.Sprint(peak))
	lines := make([]string, 0, graphHeight+1)

	for row := 0; row < graphHeight; row++ {
		base := (graphHeight - 1 - row) * 8

		var b strings.Builder
		for _, c := range history {
			level := 0
			if peak > 0 {
				level = int(uint64(c) * graphHeight * 8 / uint64(peak))
			}
			fill := level - base
			switch {
			case fill >= 8:
				b.WriteString(barGlyphs[7])
			case fill > 0:
				b.WriteString(barGlyphs[fill-1])
			default:
				b.WriteByte(' ')
			}
		}

		label := ""
		switch row {
		case 0:
			label = fmt.Sprint(peak)
		case graphHeight - 1:
			label = "0"
		}
		lines = append(lines, fmt.Sprintf("%*s %s%s",
			labelWidth, label, r.scheme.Dim.Sprint(boxVertical), r.scheme.Graph.Sprint(b.String())))
	}

	axis := "-60s" + strings.Repeat(" ", metrics.WindowSize-7) + "now"
	lines = append(lines, fmt.Sprintf("%*s  %s", labelWidth, "", r.scheme.Dim.Sprint(axis)))
	return lines
}

// recent lists the log entries newest first.
func (r *renderer) recent(entries []metrics.LogEntry, max int) []string {
	lines := []string{r.scheme.Title.Sprint("Recent requests")}
	if len(entries) == 0 {
		return append(lines, r.scheme.Dim.Sprint("  waiting for requests..."))
	}

	shown := 0
	for i := len(entries) - 1; i >= 0 && (max <= 0 || shown < max); i-- {
		e := entries[i]
		lines = append(lines, fmt.Sprintf("  %s  %-7s %-36s %s %s",
			r.scheme.Dim.Sprint(e.ReceivedAt.Format("15:04:05.000")),
			e.Method,
			truncate(e.Path, 36),
			r.scheme.StatusColor(e.Status).Sprint(e.Status),
			r.scheme.Latency.Sprint(formatLatency(e.Latency)),
		))
		shown++
	}
	return lines
}

// formatBoxRow formats a row inside the stats box with two columns.
func (r *renderer) formatBoxRow(left, right string, width int) string {
	colWidth := (width - 6) / 2 // borders and padding

	leftPadding := colWidth - visibleLen(left)
	if leftPadding < 0 {
		leftPadding = 0
	}
	rightPadding := colWidth - visibleLen(right)
	if rightPadding < 0 {
		rightPadding = 0
	}

	border := r.scheme.Dim.Sprint(boxVertical)
	return fmt.Sprintf("%s %s%s%s %s%s %s",
		border,
		left, strings.Repeat(" ", leftPadding),
		border,
		right, strings.Repeat(" ", rightPadding),
		border)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

// visibleLen counts the runes a terminal displays, skipping CSI escape
// sequences such as color codes.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, c := range s {
		switch {
		case c == '\033':
			inEscape = true
		case inEscape:
			// A CSI sequence ends with a byte in the range @ to ~, but '['
			// opens it.
			if c != '[' && c >= '@' && c <= '~' {
				inEscape = false
			}
		default:
			n++
		}
	}
	return n
}

// formatUptime renders whole seconds, e.g. 45s, 3m04s or 1h02m03s.
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := d / time.Hour
	m := d % time.Hour / time.Minute
	sec := d % time.Minute / time.Second

	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

// formatLatency picks the unit that keeps a latency readable in a narrow
// column.
func formatLatency(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < 10*time.Millisecond:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}
