package stage

import (
	"errors"
	"fmt"
)

// Sentinel configuration errors. Match with errors.Is.
var (
	ErrUnknownGenerator      = errors.New("unknown test generator")
	ErrGroupWithoutGenerator = errors.New("group name requires a test generator")
	ErrNoEngine              = errors.New("no lint engine configured")
)

// ConfigError reports an invalid option. It is returned at construction,
// before any file is processed.
type ConfigError struct {
	Field  string
	Value  string
	Err    error
	Detail string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid %s", e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
