// Package forcelog parses OpenFOAM force and force-coefficient logs into
// ordered time series.
package forcelog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/okian/foamperf/internal/domain/model"
	"github.com/okian/foamperf/pkg/logger"
	"github.com/okian/foamperf/pkg/metrics"
)

// Column counts per schema, including the time column.
const (
	forceColumns        = 16 // time + 5 vectors
	coefficientColumns  = 7  // time + Cd Cs Cl CmRoll CmPitch CmYaw
	coefficientSplitCol = 9  // ... + Cd(f) Cd(r)
)

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithLogger sets a logger for row-skip warnings. Without one, skipped rows
// are only counted in metrics.
func WithLogger(log logger.Logger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// Parser reads whitespace-delimited force log tables. It holds no state
// between calls and does not cache file contents.
type Parser struct {
	log logger.Logger
}

// New creates a Parser with the given options.
func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads one log file into a TimeSeries.
//
// Header lines starting with '#' are skipped. Vector columns may be bare
// numbers or parenthesized triples; both encodings are accepted. A malformed
// data row is skipped with a warning (the external solver may still be
// appending, so a torn final line is expected), except that a column-count
// mismatch on the first data row fails immediately as a schema mismatch.
// Rows whose time goes backward are dropped (solver restart overlap); a row
// repeating the previous time replaces it. Last-write-wins on duplicate
// times is a documented simplification, not verified solver intent.
func (p *Parser) Parse(ctx context.Context, path string, schema model.Schema) (model.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.TimeSeries{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	defer f.Close()

	series := model.TimeSeries{Schema: schema}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	firstRow := true
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := parseRow(line, schema)
		if err != nil {
			if firstRow && errors.Is(err, ErrSchemaMismatch) {
				return model.TimeSeries{}, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			p.warn(ctx, path, lineNo, err)
			metrics.RecordParseRowSkipped()
			continue
		}
		firstRow = false
		metrics.RecordParseRow()

		appendMonotonic(&series, rec)
	}
	if err := sc.Err(); err != nil {
		return model.TimeSeries{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if series.Len() == 0 {
		return model.TimeSeries{}, fmt.Errorf("%w: %s", ErrEmptySeries, path)
	}
	return series, nil
}

// appendMonotonic keeps the series strictly time-ascending: backward times
// are dropped, an equal time replaces the previous record.
func appendMonotonic(series *model.TimeSeries, rec model.ForceRecord) {
	if n := series.Len(); n > 0 {
		last := series.Records[n-1].Time
		if rec.Time < last {
			return
		}
		if rec.Time == last {
			series.Records[n-1] = rec
			return
		}
	}
	series.Records = append(series.Records, rec)
}

// parseRow converts one data line into a record, accepting both bare and
// parenthesized vector encodings.
func parseRow(line string, schema model.Schema) (model.ForceRecord, error) {
	clean := strings.NewReplacer("(", " ", ")", " ").Replace(line)
	parts := strings.Fields(clean)

	if err := checkColumns(len(parts), schema); err != nil {
		return model.ForceRecord{}, err
	}

	vals := make([]float64, len(parts))
	for i, s := range parts {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.ForceRecord{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		vals[i] = v
	}

	fields := schema.Fields()
	rec := model.ForceRecord{
		Time:   vals[0],
		Values: make(map[string]float64, len(parts)-1),
	}
	for i, v := range vals[1:] {
		rec.Values[fields[i]] = v
	}
	return rec, nil
}

func checkColumns(n int, schema model.Schema) error {
	switch schema {
	case model.SchemaForce:
		if n != forceColumns {
			return fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, n, forceColumns)
		}
	case model.SchemaCoefficient:
		if n != coefficientColumns && n != coefficientSplitCol {
			return fmt.Errorf("%w: got %d columns, want %d or %d",
				ErrSchemaMismatch, n, coefficientColumns, coefficientSplitCol)
		}
	default:
		return fmt.Errorf("%w: unknown schema %q", ErrSchemaMismatch, schema)
	}
	return nil
}

func (p *Parser) warn(ctx context.Context, path string, line int, err error) {
	if p.log == nil {
		return
	}
	p.log.Warn(ctx, "skipping malformed log row",
		logger.String("path", path),
		logger.Int("line", line),
		logger.Error(err),
	)
}
