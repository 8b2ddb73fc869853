package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wesleyorama2/ratestub/internal/config"
	"github.com/wesleyorama2/ratestub/internal/dashboard"
	"github.com/wesleyorama2/ratestub/internal/logging"
	"github.com/wesleyorama2/ratestub/internal/metrics"
	"github.com/wesleyorama2/ratestub/internal/monitoring"
	"github.com/wesleyorama2/ratestub/internal/output"
	"github.com/wesleyorama2/ratestub/internal/server"
)

// Serve binds the configured address and runs the server until ctx is
// cancelled or the user quits the dashboard. cfg must already be valid.
func Serve(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", cfg.Addr(), err)
	}
	return ServeListener(ctx, cfg, ln, stdout, stderr)
}

// ServeListener runs the whole pipeline on a bound listener and prints the
// final summary to stdout once everything has stopped.
//
// Shutdown proceeds in order: the HTTP server stops accepting and waits for
// in-flight requests, the event stream is closed, the aggregator drains it
// and publishes the final snapshot, and the summary is printed.
func ServeListener(ctx context.Context, cfg *config.Config, ln net.Listener, stdout, stderr io.Writer) error {
	delayCfg, err := config.ParseDelay(cfg.Delay)
	if err != nil {
		ln.Close()
		return err
	}
	policy, err := delayCfg.Policy()
	if err != nil {
		ln.Close()
		return err
	}
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		ln.Close()
		return err
	}
	formatter := output.GetFormatter(format, false)
	if jf, ok := formatter.(*output.JSONFormatter); ok {
		jf.Pretty = cfg.Pretty
	}

	start := time.Now()
	emitter := metrics.NewEmitter(cfg.EventBuffer)
	store := metrics.NewStore(start)
	recent := metrics.NewRecentLog(cfg.Dashboard.RecentEntries)

	dashCfg := dashboard.Config{
		Store:           store,
		Recent:          recent,
		Formatter:       formatter,
		URL:             "http://" + ln.Addr().String(),
		Delay:           delayCfg.String(),
		RefreshInterval: cfg.RefreshInterval(),
		SummaryInterval: cfg.SummaryInterval(),
		RecentEntries:   cfg.Dashboard.RecentEntries,
		Output:          stdout,
		Disabled:        cfg.Dashboard.Disabled,
	}

	// Log lines must never land on the dashboard's screen.
	logOpts := logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}
	if !dashCfg.Interactive() {
		logOpts.Console = stderr
	}
	logger, err := logging.NewWithOptions(logOpts)
	if err != nil {
		ln.Close()
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logging.SetGlobal(logger)
	defer logging.Sync()

	dashCfg.Logger = logging.Named("dashboard")
	dash := dashboard.New(dashCfg)

	var metricsLn net.Listener
	if cfg.MetricsAddr != "" {
		metricsLn, err = net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			ln.Close()
			return fmt.Errorf("failed to bind metrics address %s: %w", cfg.MetricsAddr, err)
		}
	}

	aggCfg := metrics.DefaultAggregatorConfig()
	aggCfg.Logger = logging.Named("aggregator")
	agg := metrics.NewAggregator(emitter, store, recent, start, aggCfg)

	handler := server.NewHandler(policy, emitter, formatter, logging.Named("handler"))
	srv := server.New(server.NewRouter(handler), server.DefaultShutdownTimeout, logging.Named("server"))

	logging.Info("Starting ratestub",
		zap.String("addr", ln.Addr().String()),
		zap.String("delay", delayCfg.String()),
		zap.String("format", string(format)),
		zap.Bool("dashboard", dash.Interactive()),
	)
	logging.Debug("Telemetry settings",
		zap.Int("event_buffer", cfg.EventBuffer),
		zap.Duration("refresh", dashCfg.RefreshInterval),
		zap.Duration("summary_interval", dashCfg.SummaryInterval),
		zap.Int("recent_entries", dashCfg.RecentEntries),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	// The aggregator outlives ctx: it stops only once the emitter is
	// closed, after the last handler has returned.
	aggCtx := context.WithoutCancel(ctx)
	aggDone := make(chan struct{})
	go func() {
		defer close(aggDone)
		agg.Run(aggCtx)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	if metricsLn != nil {
		g.Go(func() error {
			return monitoring.Serve(gctx, metricsLn, store, logging.Named("monitoring"))
		})
	}
	g.Go(func() error {
		// Quitting the dashboard stops everything else.
		defer cancel()
		return dash.Run(gctx)
	})

	runErr := g.Wait()
	if runErr != nil {
		logging.Error("Shutdown error", zap.Error(runErr))
	}

	emitter.Close()
	<-aggDone

	if dropped := emitter.Dropped(); dropped > 0 {
		logging.Warn("Events dropped because the event buffer was full",
			zap.Uint64("dropped_events", dropped),
			zap.Int("event_buffer", cfg.EventBuffer),
		)
	}

	if err := dash.PrintSummary(); err != nil && runErr == nil {
		runErr = err
	}

	logging.Info("ratestub stopped",
		zap.Uint64("total_requests", store.Load().Stats.TotalRequests),
		zap.Uint64("dropped_events", emitter.Dropped()),
	)
	return runErr
}
