package testgen

import "fmt"

// Mocha emits describe/it blocks; failures throw a chai AssertionError.
type Mocha struct{}

// SuiteHeader opens a describe block.
func (Mocha) SuiteHeader(name string) string {
	return fmt.Sprintf("describe('%s', function() {\n", escape(name))
}

// SuiteFooter closes the describe block.
func (Mocha) SuiteFooter() string {
	return "});\n"
}

// Test emits an it block.
func (Mocha) Test(name string, passed bool, failureMessage string) string {
	body := "// test passed"
	if !passed {
		body = fmt.Sprintf("var error = new chai.AssertionError('%s');\n    error.stack = undefined;\n    throw error;", escape(failureMessage))
	}
	return fmt.Sprintf("  it('%s', function() {\n    %s\n  });\n", escape(name), body)
}
