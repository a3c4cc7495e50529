package sarif

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dkoosis/hbslint/pkg/lint"
)

// Read parses SARIF from an io.Reader.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sarif: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode sarif: trailing data after document")
	}

	if doc.Version == "" {
		return nil, errors.New("missing sarif version")
	}

	return &doc, nil
}

// ReadBytes parses SARIF from a byte slice.
func ReadBytes(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// Diagnostics flattens every result of every run into lint diagnostics
// tagged with moduleID. SARIF columns are 1-based; diagnostics use the
// engine convention of 0-based columns.
func Diagnostics(doc *Document, moduleID string) []lint.Diagnostic {
	var out []lint.Diagnostic
	for _, run := range doc.Runs {
		for _, r := range run.Results {
			d := lint.Diagnostic{
				Rule:     r.RuleID,
				Message:  r.Message.Text,
				Severity: severityForLevel(r.Level),
				ModuleID: moduleID,
			}
			if len(r.Locations) > 0 {
				region := r.Locations[0].PhysicalLocation.Region
				if region.StartLine > 0 {
					d.Line = lint.Pos(region.StartLine)
					if region.StartColumn > 0 {
						d.Column = lint.Pos(region.StartColumn - 1)
					}
				}
				if region.Snippet != nil {
					d.Source = region.Snippet.Text
				}
			}
			out = append(out, d)
		}
	}
	return out
}

// severityForLevel maps SARIF levels onto engine severities. A missing
// level means "warning" per SARIF 3.27.10.
func severityForLevel(level string) lint.Severity {
	switch level {
	case LevelError:
		return lint.SeverityError
	case LevelWarning, "":
		return lint.SeverityWarning
	default:
		return lint.SeverityOff
	}
}

func levelForSeverity(s lint.Severity) string {
	switch {
	case s.Failing():
		return LevelError
	case s == lint.SeverityWarning:
		return LevelWarning
	default:
		return LevelNote
	}
}
