package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dkoosis/hbslint/pkg/check"
	"github.com/dkoosis/hbslint/pkg/sarif"
)

// --- JTBD E2E Tests ---
// These run the CLI end to end against a shell script standing in for the
// template linter: templates → engine → stage → outputs, summary, reports.

const fakeLinter = `
      cat >/dev/null
      case "$1" in
        bad.hbs) echo '[{"rule":"no-debugger","message":"Unexpected debugger","severity":2,"line":1,"column":2,"source":"{{debugger}}"},{"rule":"quotes","message":"use double quotes","severity":1}]'; exit 1 ;;
        *) echo '[]' ;;
      esac
`

type project struct {
	root   string
	config string
	output string
}

func newProject(t *testing.T, extra string, templates map[string]string) project {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	root := t.TempDir()
	for rel, content := range templates {
		p := filepath.Join(root, "app", filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p := project{root: root, config: filepath.Join(root, ".hbslint.yaml"), output: filepath.Join(root, "dist")}
	cfg := "input: " + filepath.Join(root, "app") + "\n" +
		"output: " + p.output + "\n" +
		"project: " + root + "\n" +
		"cache_dir: " + filepath.Join(root, ".cache") + "\n" +
		"log_level: ERROR\n" +
		"engine:\n" +
		"  config_flag: \"-\"\n" +
		"  command:\n" +
		"    - sh\n" +
		"    - -c\n" +
		"    - |" + fakeLinter +
		extra
	if err := os.WriteFile(p.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestJTBD_BuildReportsTemplateErrors(t *testing.T) {
	p := newProject(t, "test_generator: qunit\n", map[string]string{
		"bad.hbs":  "{{debugger}}",
		"good.hbs": "<p>ok</p>",
	})

	var stdout, stderr bytes.Buffer
	code := run([]string{"build", "-c", p.config}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit code 0 without fail_on_error, got %d; stderr:\n%s", code, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "1 Template Linting Error\n") {
		t.Errorf("missing summary header; got:\n%s", out)
	}
	if !strings.Contains(out, "no-debugger: Unexpected debugger (bad @ L1:C2): \n`{{debugger}}`") {
		t.Errorf("missing formatted diagnostic; got:\n%s", out)
	}
	if strings.Contains(out, "quotes") {
		t.Error("warning-level diagnostic leaked into the summary")
	}

	bad, err := os.ReadFile(filepath.Join(p.output, "bad.template.lint-test.js"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bad), "QUnit.module('TemplateLint | bad.hbs');") ||
		!strings.Contains(string(bad), "assert.ok(false,") {
		t.Errorf("unexpected generated test:\n%s", bad)
	}
	if _, err := os.Stat(filepath.Join(p.output, "good.template.lint-test.js")); err != nil {
		t.Errorf("missing output for good.hbs: %v", err)
	}
}

func TestJTBD_FailOnErrorExitsOne(t *testing.T) {
	p := newProject(t, "", map[string]string{"bad.hbs": "{{debugger}}"})

	var stdout, stderr bytes.Buffer
	code := run([]string{"build", "-c", p.config, "--fail-on-error"}, &stdout, &stderr)

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestJTBD_CleanTreeIsSilent(t *testing.T) {
	p := newProject(t, "fail_on_error: true\n", map[string]string{"good.hbs": "<p>ok</p>"})

	var stdout, stderr bytes.Buffer
	code := run([]string{"build", "-c", p.config}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d; stderr:\n%s", code, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no console output, got:\n%s", stdout.String())
	}
}

func TestJTBD_GroupBundlesStubs(t *testing.T) {
	p := newProject(t, "test_generator: mocha\ngroup_name: templates\n", map[string]string{
		"bad.hbs":          "{{debugger}}",
		"components/x.hbs": "<p>x</p>",
	})

	var stdout, stderr bytes.Buffer
	if code := run([]string{"build", "-c", p.config}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit code 0, got %d; stderr:\n%s", code, stderr.String())
	}

	entries, err := os.ReadDir(p.output)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "templates.template.lint-test.js" {
		t.Fatalf("expected only the group file in output, got %v", entries)
	}

	data, err := os.ReadFile(filepath.Join(p.output, "templates.template.lint-test.js"))
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "describe('TemplateLint | templates', function() {\n") || !strings.HasSuffix(got, "});\n") {
		t.Errorf("group file not framed by one suite:\n%s", got)
	}
	if strings.Index(got, "it('bad.hbs'") > strings.Index(got, "it('components/x.hbs'") {
		t.Errorf("stubs out of order:\n%s", got)
	}
}

func TestJTBD_GroupWithoutGeneratorIsUsageError(t *testing.T) {
	p := newProject(t, "group_name: templates\n", map[string]string{"good.hbs": "ok"})

	var stdout, stderr bytes.Buffer
	code := run([]string{"build", "-c", p.config}, &stdout, &stderr)

	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "group name requires a test generator") {
		t.Errorf("missing config error; got:\n%s", stderr.String())
	}
}

func TestJTBD_UnknownGeneratorIsUsageError(t *testing.T) {
	p := newProject(t, "", map[string]string{"good.hbs": "ok"})

	var stdout, stderr bytes.Buffer
	code := run([]string{"build", "-c", p.config, "--test-generator", "jasmine"}, &stdout, &stderr)

	if code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "mocha, qunit") {
		t.Errorf("error should list known generators; got:\n%s", stderr.String())
	}
}

func TestJTBD_WritesSARIFAndCheckReports(t *testing.T) {
	p := newProject(t, "", map[string]string{"bad.hbs": "{{debugger}}", "good.hbs": "ok"})
	sarifPath := filepath.Join(p.root, "reports", "lint.sarif")
	checkPath := filepath.Join(p.root, "reports", "lint.check.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{"build", "-c", p.config, "--sarif-output", sarifPath, "--check-output", checkPath}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d; stderr:\n%s", code, stderr.String())
	}

	data, err := os.ReadFile(sarifPath)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := sarif.ReadBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	results := doc.Runs[0].Results
	if len(results) != 1 || results[0].RuleID != "no-debugger" {
		t.Fatalf("unexpected SARIF results: %+v", results)
	}
	if uri := results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI; uri != "bad.hbs" {
		t.Errorf("URI = %q, want bad.hbs", uri)
	}

	report, err := check.ReadFile(checkPath)
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != check.StatusFail || len(report.Items) != 1 {
		t.Errorf("unexpected check report: %+v", report)
	}
}

func TestJTBD_SecondBuildUsesCache(t *testing.T) {
	p := newProject(t, "", map[string]string{"bad.hbs": "{{debugger}}"})

	var first, second, stderr bytes.Buffer
	if code := run([]string{"build", "-c", p.config}, &first, &stderr); code != 0 {
		t.Fatalf("first build: exit %d; stderr:\n%s", code, stderr.String())
	}
	if code := run([]string{"build", "-c", p.config}, &second, &stderr); code != 0 {
		t.Fatalf("second build: exit %d; stderr:\n%s", code, stderr.String())
	}
	if first.String() != second.String() {
		t.Errorf("cached pass printed a different summary:\n%s\nvs\n%s", first.String(), second.String())
	}

	var cleanOut bytes.Buffer
	if code := run([]string{"clean", "-c", p.config}, &cleanOut, &stderr); code != 0 {
		t.Fatalf("clean: exit %d; stderr:\n%s", code, stderr.String())
	}
	entries, err := os.ReadDir(filepath.Join(p.root, ".cache", "results"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty results cache after clean, got %d entries", len(entries))
	}
}

func TestJTBD_Generators(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"generators"}, &stdout, &stderr)

	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if stdout.String() != "mocha\nqunit\n" {
		t.Errorf("generators = %q", stdout.String())
	}
}

func TestJTBD_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"version"}, &stdout, &stderr); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "hbslint ") {
		t.Errorf("version = %q", stdout.String())
	}
}

func TestJTBD_UnknownCommandFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"lint-everything"}, &stdout, &stderr); code == 0 {
		t.Error("expected non-zero exit for unknown command")
	}
}
