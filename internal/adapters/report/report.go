// Package report renders a finished analysis Report to the summary files
// the surrounding tooling consumes. Rendering lives outside the engine
// core: the core only produces the metric-name -> (value, unit) mapping.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/okian/foamperf/internal/domain/model"
)

// File names written into the run directory.
const (
	JSONFile     = "postProcessingSummary.json"
	CSVFile      = "postProcessingSummary.csv"
	MarkdownFile = "postProcessingSummary.md"

	filePermission = 0o644
)

// Headline metrics rendered first in the Markdown summary; everything else
// follows alphabetically.
var headlineMetrics = []string{
	"drag", "lift", "cd", "cl", "l_d_ratio",
	"thrust", "torque", "power", "efficiency", "kt", "kq", "advance_ratio",
}

// WriteFiles renders the report as JSON, CSV and Markdown into dir.
func WriteFiles(dir string, rep model.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, JSONFile), data, filePermission); err != nil {
		return fmt.Errorf("writing %s: %w", JSONFile, err)
	}

	if err := writeCSV(filepath.Join(dir, CSVFile), rep); err != nil {
		return err
	}
	return writeMarkdown(filepath.Join(dir, MarkdownFile), rep)
}

func writeCSV(path string, rep model.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", CSVFile, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Metric", "Value", "Unit", "Note"}); err != nil {
		return fmt.Errorf("writing %s: %w", CSVFile, err)
	}
	for _, name := range sortedNames(rep.Metrics) {
		m := rep.Metrics[name]
		if err := w.Write([]string{name, formatValue(m), m.Unit, m.Note}); err != nil {
			return fmt.Errorf("writing %s: %w", CSVFile, err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeMarkdown(path string, rep model.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", MarkdownFile, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Performance Summary\n\n")
	fmt.Fprintf(f, "**Domain:** %s\n\n", rep.Domain)
	fmt.Fprintf(f, "**Method:** %s over t = [%g, %g] (%d samples)\n\n",
		rep.Provenance.Method, rep.Provenance.TimeStart, rep.Provenance.TimeEnd, rep.Provenance.Samples)
	if rep.Note != "" {
		fmt.Fprintf(f, "> %s\n\n", rep.Note)
	}

	fmt.Fprintf(f, "## Metrics\n\n| Metric | Value | Unit |\n| :--- | ---: | :--- |\n")
	seen := make(map[string]bool, len(headlineMetrics))
	for _, name := range headlineMetrics {
		if m, ok := rep.Metrics[name]; ok {
			fmt.Fprintf(f, "| **%s** | %s | %s |\n", name, formatValue(m), m.Unit)
			seen[name] = true
		}
	}

	rest := false
	for _, name := range sortedNames(rep.Metrics) {
		if seen[name] {
			continue
		}
		if !rest {
			fmt.Fprintf(f, "\n### Details\n\n| Metric | Value | Unit |\n| :--- | ---: | :--- |\n")
			rest = true
		}
		fmt.Fprintf(f, "| %s | %s | %s |\n", name, formatValue(rep.Metrics[name]), rep.Metrics[name].Unit)
	}
	return nil
}

func sortedNames(m model.MetricSet) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatValue(m model.Metric) string {
	if m.Value == nil {
		return "null"
	}
	return strconv.FormatFloat(*m.Value, 'g', 6, 64)
}
