package check

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dkoosis/hbslint/pkg/lint"
)

// ToolName labels reports written by this module.
const ToolName = "hbslint"

// Input is what a report is built from.
type Input struct {
	Files       int
	CacheHits   int
	Diagnostics []lint.Diagnostic
	// Extension is appended to module ids to name files.
	Extension string
}

// NewReport builds a report with one item per diagnostic. Any
// build-failing diagnostic fails the report.
func NewReport(in Input) *Report {
	stats := lint.ComputeStats(in.Diagnostics)

	r := &Report{
		Schema:  SchemaID,
		Tool:    ToolName,
		Status:  StatusPass,
		Summary: fmt.Sprintf("%d templates, no template linting errors", in.Files),
		Metrics: []Metric{
			{Name: "templates", Value: float64(in.Files)},
			{Name: "cache_hits", Value: float64(in.CacheHits)},
			{Name: "errors", Value: float64(stats.Errors)},
			{Name: "warnings", Value: float64(stats.Warnings)},
		},
	}
	switch {
	case stats.Errors > 0:
		r.Status = StatusFail
		r.Summary = fmt.Sprintf("%d template linting errors in %d of %d templates",
			stats.Errors, len(stats.ByModule), in.Files)
	case stats.Warnings > 0:
		r.Status = StatusWarn
		r.Summary = fmt.Sprintf("%d template linting warnings in %d templates", stats.Warnings, in.Files)
	}

	for _, d := range in.Diagnostics {
		item := Item{
			Severity: itemSeverity(d.Severity),
			Label:    d.Rule,
			File:     d.ModuleID + in.Extension,
			Message:  d.Message,
		}
		if d.Line != nil {
			item.Line = *d.Line
		}
		r.Items = append(r.Items, item)
	}
	sort.SliceStable(r.Items, func(i, j int) bool {
		if r.Items[i].File != r.Items[j].File {
			return r.Items[i].File < r.Items[j].File
		}
		return r.Items[i].Line < r.Items[j].Line
	})
	return r
}

func itemSeverity(s lint.Severity) string {
	switch {
	case s.Failing():
		return SeverityError
	case s == lint.SeverityWarning:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Write encodes the report as indented JSON.
func Write(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode check report: %w", err)
	}
	return nil
}

// WriteFile writes the report to path, creating parent directories.
func WriteFile(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create check report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create check report: %w", err)
	}
	if err := Write(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
