// Package reduce collapses a force time series into one representative
// record using a configurable temporal strategy.
package reduce

import (
	"fmt"

	"github.com/okian/foamperf/internal/domain/model"
)

// DefaultExcludeFraction is the initial-transient fraction dropped by the
// exclude_initial mode when none is configured.
const DefaultExcludeFraction = 0.2

// Params carries the mode-specific reduction parameters. TimeStart and
// TimeEnd are required for window mode; ExcludeFraction applies to
// exclude_initial mode only.
type Params struct {
	TimeStart       float64
	TimeEnd         float64
	ExcludeFraction float64
}

// Reduce collapses the series per the requested mode. Each call is
// independent; nothing is retained between calls and the input series is
// not mutated.
func Reduce(series model.TimeSeries, mode model.ReductionMode, p Params) (model.ReductionResult, error) {
	if series.Len() == 0 {
		return model.ReductionResult{}, ErrEmptySeries
	}

	switch mode {
	case model.ReduceLatest:
		return latest(series), nil
	case model.ReduceAverage:
		return window(series, mode, series.First().Time, series.Last().Time)
	case model.ReduceWindow:
		if p.TimeStart > p.TimeEnd {
			return model.ReductionResult{}, fmt.Errorf("%w: start %g > end %g",
				ErrInvalidWindow, p.TimeStart, p.TimeEnd)
		}
		return window(series, mode, p.TimeStart, p.TimeEnd)
	case model.ReduceExcludeInitial:
		f := p.ExcludeFraction
		if f < 0 || f >= 1 {
			return model.ReductionResult{}, fmt.Errorf("%w: got %g", ErrInvalidFraction, f)
		}
		first, last := series.First().Time, series.Last().Time
		start := first + f*(last-first)
		return window(series, mode, start, last)
	default:
		return model.ReductionResult{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func latest(series model.TimeSeries) model.ReductionResult {
	last := series.Last()
	rec := model.ForceRecord{Time: last.Time, Values: make(map[string]float64, len(last.Values))}
	for k, v := range last.Values {
		rec.Values[k] = v
	}
	return model.ReductionResult{
		Record:    rec,
		Schema:    series.Schema,
		Mode:      model.ReduceLatest,
		TimeStart: last.Time,
		TimeEnd:   last.Time,
		Samples:   1,
	}
}

// window averages records with start <= time <= end, field-wise and per
// vector component. Accumulation is in float64; the division is guarded by
// the sample count so a NaN can never be returned silently.
func window(series model.TimeSeries, mode model.ReductionMode, start, end float64) (model.ReductionResult, error) {
	sums := make(map[string]float64)
	count := 0
	var tFirst, tLast float64

	for _, rec := range series.Records {
		if rec.Time < start || rec.Time > end {
			continue
		}
		if count == 0 {
			tFirst = rec.Time
		}
		tLast = rec.Time
		count++
		for k, v := range rec.Values {
			sums[k] += v
		}
	}

	if count == 0 {
		return model.ReductionResult{}, fmt.Errorf("%w: [%g, %g]", ErrEmptyWindow, start, end)
	}

	rec := model.ForceRecord{Time: tLast, Values: make(map[string]float64, len(sums))}
	for k, sum := range sums {
		rec.Values[k] = sum / float64(count)
	}
	return model.ReductionResult{
		Record:    rec,
		Schema:    series.Schema,
		Mode:      mode,
		TimeStart: tFirst,
		TimeEnd:   tLast,
		Samples:   count,
	}, nil
}
