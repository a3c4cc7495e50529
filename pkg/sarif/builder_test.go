package sarif

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dkoosis/hbslint/pkg/lint"
)

func TestBuilder_BasicOutput(t *testing.T) {
	b := NewBuilder("hbslint", "1.0")
	b.AddResult("no-bare-strings", "error", "bare string", "app/foo.hbs", 15, 3)

	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if doc.Version != "2.1.0" {
		t.Errorf("expected version 2.1.0, got %s", doc.Version)
	}
	if len(doc.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(doc.Runs))
	}
	if doc.Runs[0].Tool.Driver.Name != "hbslint" {
		t.Errorf("expected tool hbslint, got %s", doc.Runs[0].Tool.Driver.Name)
	}
	if len(doc.Runs[0].Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(doc.Runs[0].Results))
	}
	r := doc.Runs[0].Results[0]
	if r.RuleID != "no-bare-strings" {
		t.Errorf("expected ruleId no-bare-strings, got %s", r.RuleID)
	}
	if r.Locations[0].PhysicalLocation.Region.StartLine != 15 {
		t.Errorf("expected line 15, got %d", r.Locations[0].PhysicalLocation.Region.StartLine)
	}
}

func TestBuilder_EmptyRunHasResultsArray(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewBuilder("hbslint", "").WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"results": []`)) {
		t.Errorf("expected empty results array, got %s", buf.String())
	}
}

func TestBuilder_AddDiagnostic(t *testing.T) {
	b := NewBuilder("hbslint", "").
		AddDiagnostic(lint.Diagnostic{Rule: "r1", Message: "m1", Severity: lint.SeverityError, Line: lint.Pos(3), Column: lint.Pos(0), Source: "{{x}}"}, "a.hbs").
		AddDiagnostic(lint.Diagnostic{Rule: "r2", Message: "m2", Severity: lint.SeverityWarning}, "b.hbs")

	results := b.Document().Runs[0].Results
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	region := results[0].Locations[0].PhysicalLocation.Region
	if region.StartLine != 3 || region.StartColumn != 1 {
		t.Errorf("region = %d:%d, want 3:1", region.StartLine, region.StartColumn)
	}
	if region.Snippet == nil || region.Snippet.Text != "{{x}}" {
		t.Errorf("snippet = %+v, want {{x}}", region.Snippet)
	}
	if results[0].Level != LevelError || results[1].Level != LevelWarning {
		t.Errorf("levels = %s, %s", results[0].Level, results[1].Level)
	}
	if results[1].Locations[0].PhysicalLocation.Region.StartLine != 0 {
		t.Error("diagnostic without position should have no start line")
	}

	// Round-trip back into diagnostics keeps the engine column convention.
	back := Diagnostics(b.Document(), "a")
	if *back[0].Column != 0 {
		t.Errorf("column = %d, want 0", *back[0].Column)
	}
}
