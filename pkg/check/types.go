// Package check writes lintkit-check documents: a compact status report
// (summary, metrics, one item per finding) that dashboards and CI gates read
// without parsing SARIF.
package check

// SchemaID is the $schema value of every lintkit-check document.
const SchemaID = "lintkit-check"

// Report is a lintkit-check document.
type Report struct {
	Schema  string   `json:"$schema"`
	Tool    string   `json:"tool"`
	Status  string   `json:"status"`
	Summary string   `json:"summary"`
	Metrics []Metric `json:"metrics,omitempty"`
	Items   []Item   `json:"items,omitempty"`
}

// Metric is one named measurement.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Item is one finding.
type Item struct {
	Severity string `json:"severity"`
	Label    string `json:"label"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Status values.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// Item severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)
