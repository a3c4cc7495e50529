package lint

// Stats aggregates a set of diagnostics.
type Stats struct {
	Total    int
	Errors   int
	Warnings int
	ByRule   map[string]int
	ByModule map[string]int
}

// ComputeStats counts diagnostics by severity, rule and module.
func ComputeStats(ds []Diagnostic) Stats {
	stats := Stats{
		ByRule:   make(map[string]int),
		ByModule: make(map[string]int),
	}

	for _, d := range ds {
		stats.Total++
		stats.ByRule[d.Rule]++
		stats.ByModule[d.ModuleID]++

		switch {
		case d.Severity.Failing():
			stats.Errors++
		case d.Severity == SeverityWarning:
			stats.Warnings++
		}
	}

	return stats
}
