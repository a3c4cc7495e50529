package testgen

import "fmt"

// QUnit emits QUnit modules and tests.
type QUnit struct{}

// SuiteHeader opens a QUnit module.
func (QUnit) SuiteHeader(name string) string {
	return fmt.Sprintf("QUnit.module('%s');\n", escape(name))
}

// SuiteFooter is empty; QUnit modules are not closed.
func (QUnit) SuiteFooter() string {
	return ""
}

// Test emits a single-assertion test.
func (QUnit) Test(name string, passed bool, failureMessage string) string {
	return fmt.Sprintf("QUnit.test('%s', function(assert) {\n  assert.expect(1);\n  assert.ok(%t, '%s');\n});\n",
		escape(name), passed, escape(failureMessage))
}
