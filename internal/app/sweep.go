package app

import (
	"context"
	"sync"

	"github.com/okian/foamperf/internal/domain/model"
	"github.com/okian/foamperf/pkg/logger"
)

// SweepResult is the outcome of one run directory in a sweep.
type SweepResult struct {
	RunDir string
	Report model.Report
	Err    error
}

// Sweep analyzes several run directories with the same request template,
// bounded by the configured worker count. The engine is stateless, so
// concurrent passes over different runs share nothing. Results are returned
// in the order of runDirs.
func (s *Service) Sweep(ctx context.Context, runDirs []string, base Request) []SweepResult {
	results := make([]SweepResult, len(runDirs))
	sem := make(chan struct{}, s.sweepWorkers)
	var wg sync.WaitGroup

	for i, dir := range runDirs {
		wg.Add(1)
		go func(i int, dir string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			req := base
			req.RunDir = dir
			rep, err := s.Analyze(ctx, req)
			results[i] = SweepResult{RunDir: dir, Report: rep, Err: err}
			if err != nil {
				s.log.Warn(ctx, "sweep run failed",
					logger.String("runDir", dir), logger.Error(err))
			}
		}(i, dir)
	}
	wg.Wait()
	return results
}
