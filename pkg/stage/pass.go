package stage

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dkoosis/hbslint/pkg/filter"
	"github.com/dkoosis/hbslint/pkg/lint"
)

// Pass collects the diagnostics of one build pass. A new Pass is created
// for every RunBuildPass, so nothing leaks between passes. Safe for
// concurrent use.
type Pass struct {
	ID string

	mu     sync.Mutex
	errors []string
	diags  []lint.Diagnostic
	stats  filter.Stats
}

// NewPass returns an empty pass with a fresh id.
func NewPass() *Pass {
	return &Pass{ID: uuid.NewString()}
}

// Add records diagnostics and their display strings.
func (p *Pass) Add(ds ...lint.Diagnostic) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range ds {
		p.diags = append(p.diags, d)
		p.errors = append(p.errors, lint.Format(d))
	}
}

// Len returns the number of recorded diagnostics.
func (p *Pass) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.errors)
}

// Errors returns the formatted diagnostics in recording order.
func (p *Pass) Errors() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.errors...)
}

// Diagnostics returns the recorded diagnostics in recording order.
func (p *Pass) Diagnostics() []lint.Diagnostic {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]lint.Diagnostic(nil), p.diags...)
}

// Stats returns the host statistics of the pass.
func (p *Pass) Stats() filter.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Pass) setStats(s filter.Stats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = s
}

// summaryHeader is "N Template Linting Error(s)".
func summaryHeader(n int) string {
	label := "Template Linting Error"
	if n != 1 {
		label += "s"
	}
	return fmt.Sprintf("%d %s", n, label)
}

// summary renders the block printed at the end of a pass. header is
// passed in so consoles can style it.
func summary(header string, errs []string) string {
	return "\n" + header + "\n\n" + strings.Join(errs, "\n") + "\n"
}
