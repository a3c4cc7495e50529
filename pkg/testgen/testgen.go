// Package testgen produces test-framework source fragments from lint
// pass/fail results. Generators only emit strings; callers concatenate them.
package testgen

import (
	"fmt"
	"sort"
	"strings"
)

// Generator emits the three fragments of a generated test file.
type Generator interface {
	SuiteHeader(name string) string
	SuiteFooter() string
	Test(name string, passed bool, failureMessage string) string
}

var registry = map[string]Generator{
	"qunit": QUnit{},
	"mocha": Mocha{},
}

// ErrUnknown is returned by Lookup for names missing from the registry.
type ErrUnknown struct {
	Name string
}

func (e *ErrUnknown) Error() string {
	return fmt.Sprintf("unknown test generator %q (expected one of: %s)", e.Name, strings.Join(Names(), ", "))
}

// Lookup returns the generator registered under name.
func Lookup(name string) (Generator, error) {
	g, ok := registry[name]
	if !ok {
		return nil, &ErrUnknown{Name: name}
	}
	return g, nil
}

// Names lists registered generator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// escape makes s safe inside a single- or double-quoted JS string literal.
func escape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\'', '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
