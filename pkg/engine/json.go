package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dkoosis/hbslint/pkg/lint"
)

// message covers the template-lint result shape and the ESLint file
// result shape ({filePath, messages}) in one struct.
type message struct {
	Rule     string    `json:"rule"`
	RuleID   string    `json:"ruleId"`
	Message  string    `json:"message"`
	Severity int       `json:"severity"`
	Line     *int      `json:"line"`
	Column   *int      `json:"column"`
	Source   string    `json:"source"`
	FilePath string    `json:"filePath"`
	Messages []message `json:"messages"`
}

// decodeJSON accepts {"path": [msg...]}, [msg...] and [{filePath, messages}].
func decodeJSON(data []byte, moduleID string) ([]lint.Diagnostic, error) {
	data = bytes.TrimSpace(data)

	var msgs []message
	switch data[0] {
	case '{':
		var byPath map[string][]message
		if err := json.Unmarshal(data, &byPath); err != nil {
			return nil, fmt.Errorf("decode lint report: %w", err)
		}
		paths := make([]string, 0, len(byPath))
		for p := range byPath {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			msgs = append(msgs, byPath[p]...)
		}
	case '[':
		if err := json.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("decode lint report: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode lint report: unexpected output %q", truncate(data, 40))
	}

	var out []lint.Diagnostic
	for _, m := range msgs {
		if m.isFileResult() {
			for _, inner := range m.Messages {
				out = append(out, inner.diagnostic(moduleID))
			}
			continue
		}
		out = append(out, m.diagnostic(moduleID))
	}
	return out, nil
}

func (m message) isFileResult() bool {
	return m.Rule == "" && m.RuleID == "" && (m.FilePath != "" || m.Messages != nil)
}

func (m message) diagnostic(moduleID string) lint.Diagnostic {
	rule := m.Rule
	if rule == "" {
		rule = m.RuleID
	}
	return lint.Diagnostic{
		Rule:     rule,
		Message:  m.Message,
		Severity: lint.Severity(m.Severity),
		Line:     m.Line,
		Column:   m.Column,
		Source:   m.Source,
		ModuleID: moduleID,
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
