package forcelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/okian/foamperf/internal/domain/model"
)

// Candidate file names per schema. Function object output naming varies
// across OpenFOAM versions.
var logFileNames = map[model.Schema][]string{
	model.SchemaForce:       {"force.dat", "forces.dat"},
	model.SchemaCoefficient: {"coefficient.dat", "forceCoeffs.dat"},
}

// ParseDir parses every time directory under a function object output
// directory (postProcessing/<name>/<time>/) in ascending time order and
// concatenates the results into one series. Restarted solvers write a new
// time directory whose rows overlap the previous one; overlapping rows are
// dropped by the monotonic-time rule in Parse.
func (p *Parser) ParseDir(ctx context.Context, dir string, schema model.Schema) (model.TimeSeries, error) {
	timeDirs, err := timeDirectories(dir)
	if err != nil {
		return model.TimeSeries{}, err
	}
	if len(timeDirs) == 0 {
		return model.TimeSeries{}, fmt.Errorf("%w: no time directories in %s", ErrNotFound, dir)
	}

	merged := model.TimeSeries{Schema: schema}
	for _, td := range timeDirs {
		path, ok := findLogFile(filepath.Join(dir, td), schema)
		if !ok {
			continue
		}
		series, err := p.Parse(ctx, path, schema)
		if err != nil {
			// A single unreadable or torn file must not abort the run;
			// later time directories may still hold good data.
			p.warn(ctx, path, 0, err)
			continue
		}
		for _, rec := range series.Records {
			appendMonotonic(&merged, rec)
		}
	}

	if merged.Len() == 0 {
		return model.TimeSeries{}, fmt.Errorf("%w: %s", ErrEmptySeries, dir)
	}
	return merged, nil
}

// FindObjectDir returns the first existing function object directory among
// the given names under caseDir/postProcessing.
func FindObjectDir(caseDir string, names ...string) (string, bool) {
	for _, name := range names {
		dir := filepath.Join(caseDir, "postProcessing", name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// timeDirectories lists numeric subdirectory names sorted by value.
func timeDirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}

	type timeDir struct {
		name string
		t    float64
	}
	dirs := make([]timeDir, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		t, err := strconv.ParseFloat(e.Name(), 64)
		if err != nil {
			continue
		}
		dirs = append(dirs, timeDir{name: e.Name(), t: t})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].t < dirs[j].t })

	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = d.name
	}
	return names, nil
}

func findLogFile(timeDir string, schema model.Schema) (string, bool) {
	for _, name := range logFileNames[schema] {
		path := filepath.Join(timeDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
