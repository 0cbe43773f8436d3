// Command foamperf analyzes OpenFOAM run directories and reports
// engineering metrics (drag, lift, thrust, torque, coefficients).
//
// Usage:
//
//	foamperf -domain aero [flags] RUN_DIR [RUN_DIR...]
//
// With several run directories the analyses run as a bounded-concurrency
// sweep. Summaries are written into each run directory and the reports are
// printed to stdout as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/foamperf/internal/adapters/history"
	"github.com/okian/foamperf/internal/adapters/report"
	app "github.com/okian/foamperf/internal/app"
	"github.com/okian/foamperf/internal/config"
	"github.com/okian/foamperf/internal/domain/model"
	"github.com/okian/foamperf/internal/domain/perf"
	"github.com/okian/foamperf/pkg/logger"
	"github.com/okian/foamperf/pkg/metrics"
)

// Metrics listener timeouts.
const (
	metricsReadHeaderTimeout = 5 * time.Second
)

type flags struct {
	domain   string
	mode     string
	from     float64
	to       float64
	fraction float64
	patches  string

	area     float64
	length   float64
	velocity float64
	density  float64

	rpm      float64
	diameter float64
	advance  float64

	noFiles bool
}

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	var f flags
	flag.StringVar(&f.domain, "domain", "aero", "analysis domain: aero or propeller")
	flag.StringVar(&f.mode, "mode", "exclude_initial", "reduction mode: latest, average, window or exclude_initial")
	flag.Float64Var(&f.from, "from", 0, "window start time (window mode)")
	flag.Float64Var(&f.to, "to", 0, "window end time (window mode)")
	flag.Float64Var(&f.fraction, "exclude-fraction", cfg.ExcludeFraction, "initial fraction to drop (exclude_initial mode)")
	flag.StringVar(&f.patches, "patches", "", "comma-separated patch names, bypasses detection")
	flag.Float64Var(&f.area, "area", 0, "aero: reference area in m^2")
	flag.Float64Var(&f.length, "length", 0, "aero: reference length in m")
	flag.Float64Var(&f.velocity, "velocity", 0, "aero: freestream velocity in m/s")
	flag.Float64Var(&f.density, "density", 0, "fluid density in kg/m^3")
	flag.Float64Var(&f.rpm, "rpm", 0, "propeller: rotation rate in RPM")
	flag.Float64Var(&f.diameter, "diameter", 0, "propeller: diameter in m")
	flag.Float64Var(&f.advance, "advance", 0, "propeller: advance velocity in m/s")
	flag.BoolVar(&f.noFiles, "no-files", false, "skip writing summary files into the run directory")
	flag.Parse()

	runDirs := flag.Args()
	if len(runDirs) == 0 {
		os.Stderr.WriteString("usage: foamperf [flags] RUN_DIR [RUN_DIR...]\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithMinConfidence(cfg.MinConfidence),
		app.WithExcludeFraction(cfg.ExcludeFraction),
		app.WithSweepWorkers(cfg.SweepWorkers),
	}
	if len(cfg.ExcludedPatches) > 0 {
		opts = append(opts, app.WithExcludedPatches(cfg.ExcludedPatches))
	}
	if cfg.HistoryPath != "" {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			log.Error(ctx, "opening history store failed", logger.Error(err))
			os.Exit(1)
		}
		defer store.Close()
		opts = append(opts, app.WithHistory(store))
	}
	svc := app.New(opts...)

	if cfg.MetricsAddr != "" {
		startMetricsListener(ctx, log, cfg.MetricsAddr)
	}

	req := buildRequest(f)

	failed := false
	results := svc.Sweep(ctx, runDirs, req)
	for _, res := range results {
		if res.Err != nil {
			log.Error(ctx, "analysis failed",
				logger.String("runDir", res.RunDir), logger.Error(res.Err))
			failed = true
			continue
		}
		if !f.noFiles {
			if err := report.WriteFiles(res.RunDir, res.Report); err != nil {
				log.Error(ctx, "writing summary files failed",
					logger.String("runDir", res.RunDir), logger.Error(err))
				failed = true
			}
		}
		printReport(res.Report)
	}
	if failed {
		os.Exit(1)
	}
}

func buildRequest(f flags) app.Request {
	req := app.Request{
		Domain:    model.Domain(f.domain),
		Mode:      model.ReductionMode(f.mode),
		TimeStart: f.from,
		TimeEnd:   f.to,
	}
	if f.fraction >= 0 && f.fraction < 1 {
		req.ExcludeFraction = &f.fraction
	}
	if f.patches != "" {
		for _, p := range strings.Split(f.patches, ",") {
			if p = strings.TrimSpace(p); p != "" {
				req.Patches = append(req.Patches, p)
			}
		}
	}

	switch req.Domain {
	case model.DomainAero:
		aero := perf.DefaultAeroConfig()
		if f.area > 0 {
			aero.RefArea = f.area
		}
		if f.length > 0 {
			aero.RefLength = f.length
		}
		if f.velocity > 0 {
			aero.Velocity = f.velocity
		}
		if f.density > 0 {
			aero.Density = f.density
		}
		req.Aero = &aero
	case model.DomainPropeller:
		prop := perf.DefaultPropellerConfig()
		prop.RPM = f.rpm
		prop.Diameter = f.diameter
		prop.AdvanceVelocity = f.advance
		if f.density > 0 {
			prop.Density = f.density
		}
		req.Prop = &prop
	}
	return req
}

func printReport(rep model.Report) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
}

// startMetricsListener serves the Prometheus registry on a side port for
// scraping during long sweeps.
func startMetricsListener(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(ctx, "metrics listener failed", logger.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
}
