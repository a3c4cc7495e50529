package lint

// Engine verifies template source. moduleID identifies the template
// (relative path without extension) and is attached to every diagnostic.
//
// Lint findings are data: an Engine returns an error only when it could not
// run at all.
type Engine interface {
	Verify(source, moduleID string) ([]Diagnostic, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(source, moduleID string) ([]Diagnostic, error)

// Verify calls f.
func (f EngineFunc) Verify(source, moduleID string) ([]Diagnostic, error) {
	return f(source, moduleID)
}

// EngineFactory builds an Engine from the pass-through lint configuration.
type EngineFactory func(cfg Config) (Engine, error)
