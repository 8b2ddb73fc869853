// Package dashboard renders the live statistics in the terminal.
//
// When the output is a terminal the dashboard runs a full-screen bubbletea
// program redrawn on a fixed interval. Otherwise, or if the program cannot
// run, it falls back to printing a formatted summary periodically.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/wesleyorama2/ratestub/internal/metrics"
	"github.com/wesleyorama2/ratestub/internal/output"
)

// Defaults
const (
	DefaultRefreshInterval = 200 * time.Millisecond
	DefaultSummaryInterval = 5 * time.Second
	DefaultRecentEntries   = 20
)

// errPanicked is returned when the program stopped because of a panic it
// recovered on its own.
var errPanicked = errors.New("dashboard: program stopped after a panic")

// Config contains configuration for a Dashboard.
type Config struct {
	Store     *metrics.Store
	Recent    *metrics.RecentLog
	Formatter output.FormatProvider

	// URL and Delay are shown in the header
	URL   string
	Delay string

	RefreshInterval time.Duration
	SummaryInterval time.Duration
	RecentEntries   int

	// Output defaults to os.Stdout. A nil Input lets the program read
	// the controlling terminal.
	Output io.Writer
	Input  io.Reader

	// Disabled forces periodic plain output
	Disabled bool
	// ForceTTY runs the interactive program even if Output is not a terminal
	ForceTTY bool
	NoColor  bool

	Logger *zap.Logger
}

// program is the part of *tea.Program the dashboard drives.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

// Dashboard displays snapshots until its context is cancelled or the
// user quits.
type Dashboard struct {
	config     Config
	newProgram func(tea.Model, ...tea.ProgramOption) program
}

// New creates a Dashboard.
func New(config Config) *Dashboard {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}
	if config.SummaryInterval <= 0 {
		config.SummaryInterval = DefaultSummaryInterval
	}
	if config.RecentEntries <= 0 {
		config.RecentEntries = DefaultRecentEntries
	}
	if config.Formatter == nil {
		config.Formatter = output.GetFormatter(output.FormatText, config.NoColor)
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &Dashboard{
		config: config,
		newProgram: func(m tea.Model, opts ...tea.ProgramOption) program {
			return tea.NewProgram(m, opts...)
		},
	}
}

// Interactive reports whether a dashboard built from c runs the
// full-screen program. A nil Output means os.Stdout.
func (c Config) Interactive() bool {
	if c.Disabled {
		return false
	}
	out := c.Output
	if out == nil {
		out = os.Stdout
	}
	return c.ForceTTY || isTerminal(out)
}

// Interactive reports whether Run will start the full-screen program.
func (d *Dashboard) Interactive() bool {
	return d.config.Interactive()
}

// Run blocks until ctx is cancelled or the user quits the interactive
// display. The terminal is restored before Run returns.
//
// If the interactive program fails while ctx is still live, Run keeps
// printing plain summaries until ctx is cancelled and then returns the
// program's error.
func (d *Dashboard) Run(ctx context.Context) error {
	if !d.Interactive() {
		return d.runPlain(ctx)
	}

	err := d.runInteractive(ctx)
	if err == nil || ctx.Err() != nil {
		return err
	}

	d.config.Logger.Error("Dashboard failed, falling back to periodic output", zap.Error(err))
	if perr := d.runPlain(ctx); perr != nil {
		d.config.Logger.Error("Periodic output failed", zap.Error(perr))
	}
	return err
}

func (d *Dashboard) runInteractive(ctx context.Context) (err error) {
	guard := &restoreGuard{w: d.config.Output}
	defer guard.restore()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dashboard panic: %v", r)
		}
	}()

	failure := &fault{}
	m := model{
		fault:    failure,
		store:    d.config.Store,
		recent:   d.config.Recent,
		renderer: newRenderer(d.config.NoColor || !supportsColors()),
		refresh:  d.config.RefreshInterval,
		url:      d.config.URL,
		delay:    d.config.Delay,
		maxLogs:  d.config.RecentEntries,
	}.load()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(d.config.Output)}
	if d.config.Input != nil {
		opts = append(opts, tea.WithInput(d.config.Input))
	}
	p := d.newProgram(m, opts...)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Send(tea.Quit())
		case <-done:
		}
	}()

	d.config.Logger.Debug("Dashboard started", zap.Duration("refresh", d.config.RefreshInterval))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	if err := failure.Err(); err != nil {
		return err
	}
	// bubbletea recovers panics outside the model itself and then
	// returns neither a model nor an error.
	if final == nil {
		return errPanicked
	}
	return nil
}

// runPlain prints a formatted summary every SummaryInterval until ctx is
// cancelled.
func (d *Dashboard) runPlain(ctx context.Context) error {
	ticker := time.NewTicker(d.config.SummaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.PrintSummary(); err != nil {
				return err
			}
		}
	}
}

// PrintSummary writes the current snapshot through the formatter.
func (d *Dashboard) PrintSummary() error {
	out, err := d.config.Formatter.FormatSummary(output.NewSummary(d.config.Store.Load()))
	if err != nil {
		return fmt.Errorf("format summary: %w", err)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	if _, err := d.config.Output.Write(out); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// restoreGuard leaves the alternate screen and shows the cursor exactly
// once, whatever state the program left the terminal in.
type restoreGuard struct {
	once sync.Once
	w    io.Writer
}

func (g *restoreGuard) restore() {
	g.once.Do(func() {
		_, _ = io.WriteString(g.w, exitAltScreen+showCursor)
	})
}
