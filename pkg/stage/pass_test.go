package stage

import (
	"sync"
	"testing"

	"github.com/dkoosis/hbslint/pkg/lint"
)

func TestSummaryHeader(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		1: "1 Template Linting Error",
		2: "2 Template Linting Errors",
		0: "0 Template Linting Errors",
	}
	for n, want := range cases {
		if got := summaryHeader(n); got != want {
			t.Errorf("summaryHeader(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	got := summary("2 Template Linting Errors", []string{"a: x (m)", "b: y (m)"})
	want := "\n2 Template Linting Errors\n\na: x (m)\nb: y (m)\n"
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestPass_ConcurrentAdd(t *testing.T) {
	t.Parallel()

	p := NewPass()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Add(lint.Diagnostic{Rule: "r", Message: "m", Severity: lint.SeverityError, ModuleID: "x"})
		}()
	}
	wg.Wait()

	if p.Len() != 50 {
		t.Errorf("Len = %d, want 50", p.Len())
	}
	if len(p.Diagnostics()) != len(p.Errors()) {
		t.Errorf("diagnostics and errors out of step")
	}
}

func TestPass_ErrorsIsCopy(t *testing.T) {
	t.Parallel()

	p := NewPass()
	p.Add(lint.Diagnostic{Rule: "r", Message: "m", Severity: lint.SeverityError, ModuleID: "x"})
	errs := p.Errors()
	errs[0] = "changed"
	if p.Errors()[0] != "r: m (x)" {
		t.Errorf("Errors returned internal storage")
	}
}
