package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/ratestub/internal/config"
)

var version = "0.1.0"

const banner = `
            _           _         _
 _ __ __ _ | |_  ___  ___| |_ _   _| |__
| '__/ _' || __|/ _ \/ __| __| | | | '_ \
| | | (_| || |_|  __/\__ \ |_| |_| | |_) |
|_|  \__,_| \__|\___||___/\__|\__,_|_.__/
`

const longAbout = `A stub HTTP server for load and performance testing.
It answers every request after a configurable delay and tracks throughput
in real time on an interactive terminal dashboard.

Press 'q' in the dashboard or send SIGINT (Ctrl+C) to quit. A final
summary is printed on exit.`

// RootCmd represents the base command
var RootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ratestub",
		Short:         "A stub HTTP endpoint with configurable delay and live throughput stats",
		Version:       version,
		Long:          longAbout,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "Configuration file (YAML or JSON)")
	flags.IntP("port", "p", config.DefaultPort, "The port number to listen on")
	flags.String("host", config.DefaultHost, "The interface to listen on")
	flags.StringP("delay", "d", config.DefaultDelay, "Delay per request in milliseconds, or a range in 'min-max' format (e.g. 30-150)")
	flags.StringP("format", "f", config.DefaultFormat, "Response and summary format: json, text, yaml")
	flags.Bool("pretty", false, "Indent JSON response bodies and summaries")
	flags.BoolP("run", "r", false, "Run the server (if not set, only shows help)")
	flags.Int("recent", config.DefaultRecentEntries, "Number of recent requests shown on the dashboard")
	flags.Int("buffer", config.DefaultEventBuffer, "Capacity of the request event buffer")
	flags.Duration("refresh", config.DefaultRefreshInterval, "Dashboard refresh interval")
	flags.Bool("no-tui", false, "Print periodic summaries instead of the interactive dashboard")
	flags.String("metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	flags.String("log-file", "", "Write logs to this file (rotated)")

	return cmd
}

// Execute runs the root command with SIGINT and SIGTERM cancelling its
// context. This is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		return err
	}
	return nil
}

func reportError(w io.Writer, err error) {
	if config.IsValidationError(err) {
		fmt.Fprintf(w, "Invalid configuration: %v\n", err)
		fmt.Fprintln(w, "Run 'ratestub --help' for usage.")
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if !cfg.Run {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, banner)
		fmt.Fprintln(out, longAbout)
		fmt.Fprintln(out)
		fmt.Fprint(out, cmd.UsageString())
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return Serve(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig loads the configuration file, if any, and applies the flags
// that were set explicitly on top of it.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
		cfg = loaded
	}

	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("delay") {
		cfg.Delay, _ = flags.GetString("delay")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("pretty") {
		cfg.Pretty, _ = flags.GetBool("pretty")
	}
	if flags.Changed("run") {
		cfg.Run, _ = flags.GetBool("run")
	}
	if flags.Changed("recent") {
		cfg.Dashboard.RecentEntries, _ = flags.GetInt("recent")
	}
	if flags.Changed("buffer") {
		cfg.EventBuffer, _ = flags.GetInt("buffer")
	}
	if flags.Changed("refresh") {
		refresh, _ := flags.GetDuration("refresh")
		cfg.Dashboard.RefreshInterval = refresh.String()
	}
	if flags.Changed("no-tui") {
		cfg.Dashboard.Disabled, _ = flags.GetBool("no-tui")
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-file") {
		cfg.Log.File, _ = flags.GetString("log-file")
	}

	return cfg, nil
}
