package testgen_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/hbslint/pkg/testgen"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"qunit", "mocha"} {
		g, err := testgen.Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, g)
	}

	_, err := testgen.Lookup("jasmine")
	require.Error(t, err)

	var unknown *testgen.ErrUnknown
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "jasmine", unknown.Name)
	assert.Contains(t, err.Error(), "mocha, qunit")
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"mocha", "qunit"}, testgen.Names())
}

func TestQUnit(t *testing.T) {
	t.Parallel()

	g := testgen.QUnit{}

	assert.Equal(t, "QUnit.module('TemplateLint | app/foo.hbs');\n", g.SuiteHeader("TemplateLint | app/foo.hbs"))
	assert.Empty(t, g.SuiteFooter())

	pass := g.Test("should pass TemplateLint", true, "ok")
	assert.Contains(t, pass, "QUnit.test('should pass TemplateLint'")
	assert.Contains(t, pass, "assert.ok(true, 'ok');")

	fail := g.Test("x", false, "it's\nbroken")
	assert.Contains(t, fail, `assert.ok(false, 'it\'s\nbroken');`)
}

func TestMocha(t *testing.T) {
	t.Parallel()

	g := testgen.Mocha{}

	assert.Equal(t, "describe('suite', function() {\n", g.SuiteHeader("suite"))
	assert.Equal(t, "});\n", g.SuiteFooter())

	pass := g.Test("t", true, "unused")
	assert.Contains(t, pass, "// test passed")
	assert.NotContains(t, pass, "unused")

	fail := g.Test("t", false, `bad "quote"`)
	assert.Contains(t, fail, `new chai.AssertionError('bad \"quote\"')`)
	assert.Equal(t, 1, strings.Count(fail, "throw error;"))
}
