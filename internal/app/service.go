// Package app wires the analysis pipeline: patch detection, log parsing,
// temporal reduction and metric computation, one sequential pass per
// request.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/foamperf/internal/adapters/boundary"
	"github.com/okian/foamperf/internal/adapters/history"
	"github.com/okian/foamperf/internal/domain/forcelog"
	"github.com/okian/foamperf/internal/domain/model"
	"github.com/okian/foamperf/internal/domain/patchdetect"
	"github.com/okian/foamperf/internal/domain/perf"
	"github.com/okian/foamperf/internal/domain/reduce"
	"github.com/okian/foamperf/pkg/logger"
	"github.com/okian/foamperf/pkg/metrics"
)

// Function object directory names tried per schema. Naming varies with the
// solver setup (forces vs forces1); propeller cases keep their logs under
// the stator sub-case.
var (
	forceObjectNames = []string{"forces", "forces1"}
	coeffObjectNames = []string{"forceCoeffs", "forceCoeffs1"}
	caseSubDirs      = []string{"", "stator", filepath.Join("propCase", "stator")}
)

// Request describes one analysis. Zero-value physical configs fall back to
// the per-domain defaults in perf.
type Request struct {
	// RunDir is the case directory containing postProcessing output.
	RunDir string
	// Domain selects the formula set.
	Domain model.Domain
	// Mode selects the temporal reduction; empty means exclude_initial.
	Mode model.ReductionMode
	// TimeStart and TimeEnd bound the window mode.
	TimeStart float64
	TimeEnd   float64
	// ExcludeFraction overrides the configured initial-transient fraction
	// when non-nil.
	ExcludeFraction *float64
	// Patches bypasses detection when non-empty.
	Patches []string
	// Aero and Prop carry the domain physical parameters; the one matching
	// Domain is used.
	Aero *perf.AeroConfig
	Prop *perf.PropellerConfig
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHistory enables persistence of finished analyses.
func WithHistory(store *history.Store) Option {
	return func(s *Service) {
		s.history = store
	}
}

// WithMinConfidence sets the patch-detection acceptance threshold.
func WithMinConfidence(min float64) Option {
	return func(s *Service) {
		if min > 0 && min <= 1 {
			s.minConfidence = min
		}
	}
}

// WithExcludedPatches replaces the default patch exclusion list.
func WithExcludedPatches(excluded []string) Option {
	return func(s *Service) {
		if len(excluded) > 0 {
			s.excluded = excluded
		}
	}
}

// WithExcludeFraction sets the default initial-transient fraction.
func WithExcludeFraction(f float64) Option {
	return func(s *Service) {
		if f >= 0 && f < 1 {
			s.excludeFraction = f
		}
	}
}

// WithSweepWorkers bounds concurrent analyses in sweep mode.
func WithSweepWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sweepWorkers = n
		}
	}
}

// Service runs the analysis pipeline. It holds no per-request state and is
// safe to invoke concurrently for different run directories.
type Service struct {
	parser          *forcelog.Parser
	minConfidence   float64
	excluded        []string
	excludeFraction float64
	sweepWorkers    int
	history         *history.Store
	log             logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		minConfidence:   patchdetect.DefaultMinConfidence,
		excluded:        patchdetect.DefaultExclusions,
		excludeFraction: reduce.DefaultExcludeFraction,
		sweepWorkers:    4,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	s.parser = forcelog.New(forcelog.WithLogger(s.log))
	return s
}

// Analyze performs one pipeline pass: detect -> parse -> reduce -> compute.
// Parse and reduction failures are terminal for the request; configuration
// gaps only null the affected metrics.
func (s *Service) Analyze(ctx context.Context, req Request) (model.Report, error) {
	start := time.Now()
	rep, err := s.analyze(ctx, req)
	metrics.RecordAnalysis(string(req.Domain), err == nil, time.Since(start).Seconds())
	return rep, err
}

func (s *Service) analyze(ctx context.Context, req Request) (model.Report, error) {
	if !req.Domain.Valid() {
		return model.Report{}, fmt.Errorf("unknown domain %q", req.Domain)
	}
	mode := req.Mode
	if mode == "" {
		mode = model.ReduceExcludeInitial
	}
	if !mode.Valid() {
		return model.Report{}, fmt.Errorf("%w: %q", reduce.ErrUnknownMode, mode)
	}

	patches, note := s.resolvePatches(ctx, req)

	series, err := s.loadSeries(ctx, req)
	if err != nil {
		metrics.RecordParseError()
		return model.Report{}, err
	}

	params := reduce.Params{
		TimeStart:       req.TimeStart,
		TimeEnd:         req.TimeEnd,
		ExcludeFraction: s.excludeFraction,
	}
	if req.ExcludeFraction != nil {
		params.ExcludeFraction = *req.ExcludeFraction
	}
	reduced, err := reduce.Reduce(series, mode, params)
	if err != nil {
		metrics.RecordReductionError()
		return model.Report{}, fmt.Errorf("reducing series: %w", err)
	}

	formulas := s.formulasFor(req)
	rep := model.Report{
		ID:      uuid.NewString(),
		RunDir:  req.RunDir,
		Domain:  req.Domain,
		Patches: patches,
		Metrics: formulas.Compute(reduced),
		Provenance: model.Provenance{
			Method:    reduced.Mode,
			TimeStart: reduced.TimeStart,
			TimeEnd:   reduced.TimeEnd,
			Samples:   reduced.Samples,
		},
		Note: note,
	}
	if reduced.Samples < 10 && mode != model.ReduceLatest {
		rep.Note = joinNotes(rep.Note, "low sample count")
	}

	s.record(ctx, rep)

	s.log.Info(ctx, "analysis complete",
		logger.String("runDir", req.RunDir),
		logger.String("domain", string(req.Domain)),
		logger.String("method", string(reduced.Mode)),
		logger.Int("samples", reduced.Samples),
	)
	return rep, nil
}

// resolvePatches returns the explicit override, or runs detection against
// the mesh boundary file. No geometry detected is a note, not an error.
func (s *Service) resolvePatches(ctx context.Context, req Request) ([]string, string) {
	if len(req.Patches) > 0 {
		return req.Patches, ""
	}

	available := s.readBoundary(ctx, req.RunDir)
	if len(available) == 0 {
		return nil, ""
	}

	detector := patchdetect.New(
		patchdetect.WithMinConfidence(s.minConfidence),
		patchdetect.WithExclusions(s.excluded),
		patchdetect.WithWallsOnly(true),
	)
	found := detector.Detect(available, patchdetect.CandidatesFor(req.Domain))
	if len(found) == 0 {
		return nil, "no geometry detected"
	}

	names := make([]string, len(found))
	for i, m := range found {
		names[i] = m.Name
		metrics.ObservePatchConfidence(m.Confidence)
	}
	s.log.Debug(ctx, "detected geometry patches",
		logger.Any("patches", names),
		logger.Float64("confidence", found[0].Confidence),
	)
	return names, ""
}

func (s *Service) readBoundary(ctx context.Context, runDir string) []model.Patch {
	for _, sub := range caseSubDirs {
		path := boundary.File(filepath.Join(runDir, sub))
		patches, err := boundary.ReadPatches(path)
		if err == nil {
			return patches
		}
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn(ctx, "boundary file unreadable", logger.String("path", path), logger.Error(err))
		}
	}
	return nil
}

// loadSeries locates and parses the force log. Aero cases prefer the
// coefficient log when the solver wrote one; both kinds converge to the
// same metric set shape downstream.
func (s *Service) loadSeries(ctx context.Context, req Request) (model.TimeSeries, error) {
	if req.Domain == model.DomainAero {
		if dir, ok := s.findObjectDir(req.RunDir, coeffObjectNames); ok {
			series, err := s.parser.ParseDir(ctx, dir, model.SchemaCoefficient)
			if err == nil {
				return series, nil
			}
			s.log.Warn(ctx, "coefficient log unusable, falling back to force log",
				logger.String("dir", dir), logger.Error(err))
		}
	}

	dir, ok := s.findObjectDir(req.RunDir, forceObjectNames)
	if !ok {
		return model.TimeSeries{}, fmt.Errorf("%w: no force output under %s",
			forcelog.ErrNotFound, req.RunDir)
	}
	return s.parser.ParseDir(ctx, dir, model.SchemaForce)
}

func (s *Service) findObjectDir(runDir string, names []string) (string, bool) {
	for _, sub := range caseSubDirs {
		if dir, ok := forcelog.FindObjectDir(filepath.Join(runDir, sub), names...); ok {
			return dir, true
		}
	}
	return "", false
}

func (s *Service) formulasFor(req Request) perf.Formulas {
	aero := perf.DefaultAeroConfig()
	if req.Aero != nil {
		aero = *req.Aero
	}
	prop := perf.DefaultPropellerConfig()
	if req.Prop != nil {
		prop = *req.Prop
	}
	return perf.New(req.Domain, aero, prop)
}

// record persists the report when a history store is configured. History is
// best effort; a storage failure never fails the analysis.
func (s *Service) record(ctx context.Context, rep model.Report) {
	if s.history == nil {
		return
	}
	_, err := s.history.Save(ctx, history.Record{
		RunDir:    rep.RunDir,
		Domain:    rep.Domain,
		Method:    rep.Provenance.Method,
		TimeStart: rep.Provenance.TimeStart,
		TimeEnd:   rep.Provenance.TimeEnd,
		Samples:   rep.Provenance.Samples,
		Metrics:   rep.Metrics,
	})
	if err != nil {
		s.log.Warn(ctx, "recording analysis history failed", logger.Error(err))
		return
	}
	metrics.RecordHistoryWrite()
}

func joinNotes(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "; " + b
}
