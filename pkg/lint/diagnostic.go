// Package lint defines the diagnostic model shared by the template lint
// stage and the engines that feed it.
//
// A Diagnostic is produced by an Engine and never modified afterwards.
// Severity follows the engine convention: 1 is a warning, 2 is an error.
// Only diagnostics with a severity above SeverityWarning fail a build.
package lint

import (
	"fmt"
	"strings"
)

// Severity is the engine-reported importance of a diagnostic.
type Severity int

// SeverityOff marks a rule that was reported but is disabled.
const SeverityOff Severity = 0

// SeverityWarning is informational; warnings never fail a build.
const SeverityWarning Severity = 1

// SeverityError fails the build.
const SeverityError Severity = 2

// Failing reports whether the severity is build-failing.
func (s Severity) Failing() bool {
	return s > SeverityWarning
}

func (s Severity) String() string {
	switch {
	case s <= SeverityOff:
		return "off"
	case s == SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Diagnostic is one issue reported by a lint engine.
type Diagnostic struct {
	Rule     string   `json:"rule" msgpack:"rule"`
	Message  string   `json:"message" msgpack:"message"`
	Severity Severity `json:"severity" msgpack:"severity"`
	// Line and Column are optional. Columns are zero-based in most engines,
	// so absence is modelled with nil rather than zero.
	Line     *int   `json:"line,omitempty" msgpack:"line,omitempty"`
	Column   *int   `json:"column,omitempty" msgpack:"column,omitempty"`
	Source   string `json:"source,omitempty" msgpack:"source,omitempty"`
	ModuleID string `json:"moduleId" msgpack:"module_id"`
}

// Pos returns a pointer to n, for filling Line and Column.
func Pos(n int) *int {
	return &n
}

// HasPosition reports whether both line and column are known.
func (d Diagnostic) HasPosition() bool {
	return d.Line != nil && d.Column != nil
}

// Format renders a diagnostic for display:
//
//	rule: message (moduleId @ L3:C7):
//	`source`
//
// The position clause appears only when both line and column are set, the
// source clause only when source text is present.
func Format(d Diagnostic) string {
	var sb strings.Builder
	sb.WriteString(d.Rule)
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	sb.WriteString(" (")
	sb.WriteString(d.ModuleID)
	if d.HasPosition() {
		fmt.Fprintf(&sb, " @ L%d:C%d", *d.Line, *d.Column)
	}
	sb.WriteString(")")
	if d.Source != "" {
		sb.WriteString(": \n`")
		sb.WriteString(d.Source)
		sb.WriteString("`")
	}
	return sb.String()
}

// Retained drops informational diagnostics and keeps the build-failing ones,
// preserving order.
func Retained(ds []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(ds))
	for _, d := range ds {
		if d.Severity.Failing() {
			out = append(out, d)
		}
	}
	return out
}
