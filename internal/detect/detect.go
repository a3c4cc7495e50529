// Package detect sniffs lint tool output to determine its format.
package detect

import (
	"bytes"
	"encoding/json"
)

// Format represents a recognized lint report format.
type Format int

const (
	Unknown  Format = iota
	SARIF           // SARIF 2.1.0 JSON document
	LintJSON        // template-lint or ESLint style JSON
)

func (f Format) String() string {
	switch f {
	case SARIF:
		return "sarif"
	case LintJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Sniff examines a complete tool report and returns its format.
func Sniff(data []byte) Format {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Unknown
	}

	switch data[0] {
	case '{':
		// SARIF is checked first: it is also a JSON object.
		if isSARIF(data) {
			return SARIF
		}
		if isPathMap(data) {
			return LintJSON
		}
	case '[':
		var list []json.RawMessage
		if json.Unmarshal(data, &list) == nil {
			return LintJSON
		}
	}
	return Unknown
}

func isSARIF(data []byte) bool {
	var probe struct {
		Version string            `json:"version"`
		Runs    []json.RawMessage `json:"runs"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Version != "" && probe.Runs != nil
}

// isPathMap matches {"path/to/file.hbs": [...]}.
func isPathMap(data []byte) bool {
	var byPath map[string][]json.RawMessage
	return json.Unmarshal(data, &byPath) == nil
}
