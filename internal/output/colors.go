package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Title   *color.Color
	Label   *color.Color
	Value   *color.Color
	Latency *color.Color
	RPS     *color.Color
	Graph   *color.Color
	Success *color.Color
	Warning *color.Color
	Error   *color.Color
	Dim     *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title:   color.New(color.FgCyan, color.Bold),
		Label:   color.New(color.FgWhite),
		Value:   color.New(color.FgCyan),
		Latency: color.New(color.FgBlue),
		RPS:     color.New(color.FgGreen, color.Bold),
		Graph:   color.New(color.FgGreen),
		Success: color.New(color.FgGreen),
		Warning: color.New(color.FgYellow, color.Bold),
		Error:   color.New(color.FgRed, color.Bold),
		Dim:     color.New(color.Faint),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	scheme.Title.DisableColor()
	scheme.Label.DisableColor()
	scheme.Value.DisableColor()
	scheme.Latency.DisableColor()
	scheme.RPS.DisableColor()
	scheme.Graph.DisableColor()
	scheme.Success.DisableColor()
	scheme.Warning.DisableColor()
	scheme.Error.DisableColor()
	scheme.Dim.DisableColor()

	return scheme
}

// StatusColor picks the color for an HTTP status code.
func (s *ColorScheme) StatusColor(code int) *color.Color {
	switch {
	case code >= 500:
		return s.Error
	case code >= 400:
		return s.Warning
	default:
		return s.Success
	}
}
