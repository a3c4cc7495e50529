package lint_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/hbslint/pkg/lint"
)

func TestConfigCanonical_KeyOrderIndependent(t *testing.T) {
	t.Parallel()

	a, err := lint.ParseConfig([]byte("rules:\n  no-bare-strings: true\n  block-indentation: 2\nextends: recommended\n"))
	require.NoError(t, err)
	b, err := lint.ParseConfig([]byte("extends: recommended\nrules:\n  block-indentation: 2\n  no-bare-strings: true\n"))
	require.NoError(t, err)

	ca, err := a.Canonical()
	require.NoError(t, err)
	cb, err := b.Canonical()
	require.NoError(t, err)

	assert.Equal(t, string(ca), string(cb))
	assert.JSONEq(t, `{"extends":"recommended","rules":{"block-indentation":2,"no-bare-strings":true}}`, string(ca))
}

func TestConfigCanonical_Nil(t *testing.T) {
	t.Parallel()

	var cfg lint.Config
	data, err := cfg.Canonical()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestConfigHasRule(t *testing.T) {
	t.Parallel()

	cfg, err := lint.ParseConfig([]byte("rules:\n  no-bare-strings: false\n"))
	require.NoError(t, err)

	assert.True(t, cfg.HasRule("no-bare-strings"), "a disabled rule still counts as configured")
	assert.False(t, cfg.HasRule("no-html-comments"))
	assert.False(t, lint.Config{}.HasRule("no-bare-strings"))
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	missing, err := lint.LoadConfigFile(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	path := filepath.Join(dir, lint.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  CamelCaseRule: true\n"), 0o644))

	cfg, err := lint.LoadConfigFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.HasRule("CamelCaseRule"), "rule keys keep their case")
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := lint.ParseConfig([]byte("rules: [unterminated"))
	assert.Error(t, err)
}
