package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/orbit-frames/internal/catalog"
	"github.com/signalsfoundry/orbit-frames/internal/logging"
	"github.com/signalsfoundry/orbit-frames/internal/observability"
	"github.com/signalsfoundry/orbit-frames/tle"
)

// Config holds the command-line options.
type Config struct {
	URL         string
	Out         string
	Backup      string
	MetricsFile string // node_exporter textfile; empty disables it
	Timeout     time.Duration
}

func main() {
	cfg := Config{}
	flag.StringVar(&cfg.URL, "url", catalog.DefaultURL, "catalog source URL")
	flag.StringVar(&cfg.Out, "out", "fullcatalog.txt", "catalog file to install")
	flag.StringVar(&cfg.Backup, "backup", "fullcatalog_backup.txt", "where the previous catalog is kept; empty disables backups")
	flag.StringVar(&cfg.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics here after the update")
	flag.DurationVar(&cfg.Timeout, "timeout", 2*time.Minute, "overall update deadline")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "catalog update failed", logging.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log logging.Logger) error {
	if cfg.Out == "" {
		return fmt.Errorf("-out must not be empty")
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	catalogMetrics, err := observability.NewCatalogCollector(reg)
	if err != nil {
		return err
	}
	parseMetrics, err := observability.NewParseCollector(reg)
	if err != nil {
		return err
	}

	u := &catalog.Updater{
		URL:        cfg.URL,
		Path:       cfg.Out,
		BackupPath: cfg.Backup,
		Parser:     tle.NewParser(tle.WithLogger(log), tle.WithMetrics(parseMetrics)),
		Log:        log,
		Metrics:    catalogMetrics,
	}
	_, updateErr := u.Update(ctx)

	// Metrics are written on failure too so alerting sees the failed run.
	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			log.Warn(ctx, "failed to write metrics textfile",
				logging.String("path", cfg.MetricsFile),
				logging.Err(err),
			)
		}
	}
	return updateErr
}
