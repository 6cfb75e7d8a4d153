package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/signalsfoundry/orbit-frames/frames"
	"github.com/signalsfoundry/orbit-frames/internal/logging"
	"github.com/signalsfoundry/orbit-frames/internal/observability"
	"github.com/signalsfoundry/orbit-frames/tle"
	"github.com/signalsfoundry/orbit-frames/track"
)

// Config holds the command-line options.
type Config struct {
	CatalogPath string // "-" reads stdin
	At          time.Time
	Track       time.Duration
	Step        time.Duration
	Workers     int
	Format      string // json | text
	NameFilter  string
	Limit       int
	MetricsAddr string

	// Observer enables pass prediction for a ground site.
	Observer     *frames.Geodetic
	MinElevation float64
}

func main() {
	cfg := Config{}
	at := flag.String("at", "", "RFC3339 time to sample positions at (default: now)")
	flag.StringVar(&cfg.CatalogPath, "catalog", "fullcatalog.txt", `TLE catalog to read, or "-" for stdin`)
	flag.DurationVar(&cfg.Track, "track", 0, "ground-track length after -at; 0 samples a single instant")
	flag.DurationVar(&cfg.Step, "step", time.Minute, "ground-track sampling step")
	flag.IntVar(&cfg.Workers, "workers", 4, "goroutines used to decode the catalog")
	flag.StringVar(&cfg.Format, "format", "json", "output format: json or text")
	flag.StringVar(&cfg.NameFilter, "name", "", "only emit satellites whose name contains this substring (case-insensitive)")
	flag.IntVar(&cfg.Limit, "limit", 0, "emit at most this many satellites; 0 means all")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables it")
	observer := flag.String("observer", "", "ground site as lat,lng[,alt_km]; reports passes over the ground track")
	flag.Float64Var(&cfg.MinElevation, "min-elevation", 10, "minimum elevation in degrees for a pass")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg.At = time.Now().UTC()
	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			log.Error(ctx, "invalid -at", logging.String("value", *at), logging.Err(err))
			os.Exit(2)
		}
		cfg.At = parsed.UTC()
	}

	if *observer != "" {
		g, err := parseObserver(*observer)
		if err != nil {
			log.Error(ctx, "invalid -observer", logging.String("value", *observer), logging.Err(err))
			os.Exit(2)
		}
		cfg.Observer = &g
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	collector, err := observability.NewParseCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}
	if srv := serveMetrics(cfg.MetricsAddr, collector, log); srv != nil {
		defer srv.Close()
	}

	in := io.Reader(os.Stdin)
	if cfg.CatalogPath != "-" {
		f, err := os.Open(cfg.CatalogPath)
		if err != nil {
			log.Error(ctx, "failed to open catalog", logging.String("path", cfg.CatalogPath), logging.Err(err))
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	parser := tle.NewParser(tle.WithLogger(log), tle.WithMetrics(collector))
	if err := run(ctx, cfg, parser, log, in, os.Stdout); err != nil {
		log.Error(ctx, "tlegeo failed", logging.Err(err))
		os.Exit(1)
	}
}

// satelliteOutput is one emitted satellite: its elements plus the sampled
// positions, or the reason it could not be propagated.
type satelliteOutput struct {
	tle.OrbitalElementSet
	Samples []track.Sample `json:"samples,omitempty"`
	Passes  []track.Pass   `json:"passes,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func run(ctx context.Context, cfg Config, parser *tle.Parser, log logging.Logger, in io.Reader, out io.Writer) error {
	if cfg.Format != "json" && cfg.Format != "text" {
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
	res, err := parser.ParseReaderConcurrent(ctx, in, cfg.Workers)
	if err != nil {
		return err
	}
	log.Info(ctx, "decoded catalog",
		logging.Int("records", len(res.Records)),
		logging.Int("skipped", len(res.Failures)),
	)

	var outputs []satelliteOutput
	filter := strings.ToLower(cfg.NameFilter)
	for _, rec := range res.Records {
		if cfg.Limit > 0 && len(outputs) >= cfg.Limit {
			break
		}
		if filter != "" && !strings.Contains(strings.ToLower(rec.Name), filter) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		outputs = append(outputs, sample(ctx, cfg, rec, log))
	}

	switch cfg.Format {
	case "text":
		return writeText(out, outputs)
	default:
		enc := json.NewEncoder(out)
		for _, o := range outputs {
			if err := enc.Encode(o); err != nil {
				return err
			}
		}
		return nil
	}
}

func sample(ctx context.Context, cfg Config, rec tle.OrbitalElementSet, log logging.Logger) satelliteOutput {
	o := satelliteOutput{OrbitalElementSet: rec}
	p, err := track.NewSGP4Propagator(rec)
	if err != nil {
		log.Warn(ctx, "cannot propagate", logging.String("name", rec.Name), logging.Err(err))
		o.Error = err.Error()
		return o
	}
	o.Samples, err = track.GroundTrack(ctx, p, cfg.At, cfg.Step, cfg.Track)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn(ctx, "propagation stopped", logging.String("name", rec.Name), logging.Err(err))
		o.Error = err.Error()
	}
	if cfg.Observer != nil {
		o.Passes = track.Passes(o.Samples, *cfg.Observer, cfg.MinElevation)
	}
	return o
}

func writeText(out io.Writer, outputs []satelliteOutput) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTIME\tLAT\tLNG\tALT_KM\tA_KM\tECC\tINC_DEG")
	for _, o := range outputs {
		if len(o.Samples) == 0 {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%.1f\t%.7f\t%.4f\n",
				o.Name, o.SemiMajorAxis/1000, o.Eccentricity, degrees(o.Inclination))
			continue
		}
		for _, s := range o.Samples {
			fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%.1f\t%.1f\t%.7f\t%.4f\n",
				o.Name, s.Time.Format(time.RFC3339),
				s.Geodetic.LatitudeDeg, s.Geodetic.LongitudeDeg, s.Geodetic.AltitudeKm,
				o.SemiMajorAxis/1000, o.Eccentricity, degrees(o.Inclination))
		}
	}
	return tw.Flush()
}

func serveMetrics(addr string, collector *observability.ParseCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// parseObserver reads "lat,lng" or "lat,lng,alt_km".
func parseObserver(s string) (frames.Geodetic, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return frames.Geodetic{}, fmt.Errorf("want lat,lng[,alt_km], got %q", s)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return frames.Geodetic{}, fmt.Errorf("observer field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	if vals[0] < -90 || vals[0] > 90 || vals[1] < -180 || vals[1] > 180 {
		return frames.Geodetic{}, fmt.Errorf("observer %q out of range", s)
	}
	return frames.Geodetic{LatitudeDeg: vals[0], LongitudeDeg: vals[1], AltitudeKm: vals[2]}, nil
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
