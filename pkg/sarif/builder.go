package sarif

import (
	"encoding/json"
	"io"

	"github.com/dkoosis/hbslint/pkg/lint"
)

// Builder constructs valid SARIF 2.1.0 documents.
type Builder struct {
	doc *Document
}

// NewBuilder creates a SARIF builder for the given tool.
func NewBuilder(toolName, toolVersion string) *Builder {
	return &Builder{
		doc: &Document{
			Version: Version,
			Schema:  SchemaURI,
			Runs: []Run{{
				Tool:    Tool{Driver: Driver{Name: toolName, Version: toolVersion}},
				Results: []Result{},
			}},
		},
	}
}

// AddResult adds a result to the run. line and col are 1-based; zero omits them.
func (b *Builder) AddResult(ruleID, level, message, file string, line, col int) *Builder {
	r := Result{
		RuleID:  ruleID,
		Level:   level,
		Message: Message{Text: message},
	}
	if file != "" {
		r.Locations = []Location{{
			PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: file},
				Region: Region{
					StartLine:   line,
					StartColumn: col,
				},
			},
		}}
	}
	b.doc.Runs[0].Results = append(b.doc.Runs[0].Results, r)
	return b
}

// AddDiagnostic adds a lint diagnostic located in file.
func (b *Builder) AddDiagnostic(d lint.Diagnostic, file string) *Builder {
	line, col := 0, 0
	if d.HasPosition() {
		line, col = *d.Line, *d.Column+1
	}
	b.AddResult(d.Rule, levelForSeverity(d.Severity), d.Message, file, line, col)
	if d.Source != "" && file != "" {
		results := b.doc.Runs[0].Results
		results[len(results)-1].Locations[0].PhysicalLocation.Region.Snippet = &Snippet{Text: d.Source}
	}
	return b
}

// Document returns the constructed SARIF document.
func (b *Builder) Document() *Document {
	return b.doc
}

// WriteTo writes the SARIF document as JSON to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(b.doc, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}
