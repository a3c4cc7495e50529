package stage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/hbslint/pkg/lint"
	"github.com/dkoosis/hbslint/pkg/stage"
)

func writePackageJSON(t *testing.T, body string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(body), 0o644))
	return root
}

func TestLoadProject(t *testing.T) {
	t.Parallel()

	root := writePackageJSON(t, `{
		"dependencies": {"ember-source": "5.0.0"},
		"devDependencies": {"ember-intl": "6.0.0", "ember-source": "5.0.0"}
	}`)

	p, err := stage.LoadProject(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"ember-intl", "ember-source"}, p.Addons)
	assert.True(t, p.Uses("ember-intl"))
	assert.False(t, p.Uses("ember-i18n"))
}

func TestLoadProject_Missing(t *testing.T) {
	t.Parallel()

	p, err := stage.LoadProject(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, p.Addons)
}

func TestLoadProject_Invalid(t *testing.T) {
	t.Parallel()

	_, err := stage.LoadProject(writePackageJSON(t, "{"))
	assert.Error(t, err)
}

func TestAdvisory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addons  []string
		config  lint.Config
		warning bool
	}{
		{name: "intl without rule", addons: []string{"ember-intl"}, warning: true},
		{name: "i18n without rule", addons: []string{"ember-i18n"}, config: lint.Config{"rules": map[string]any{}}, warning: true},
		{name: "rule configured", addons: []string{"ember-intl"}, config: lint.Config{"rules": map[string]any{"no-bare-strings": true}}},
		{name: "rule explicitly off", addons: []string{"ember-intl"}, config: lint.Config{"rules": map[string]any{"no-bare-strings": false}}},
		{name: "no localization addon", addons: []string{"ember-source"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			console := &recordingConsole{}
			opts := baseOptions(t, &scriptedEngine{}, console)
			opts.Project = &stage.Project{Addons: tt.addons}
			opts.Config = tt.config

			_, err := stage.New(t.TempDir(), opts)
			require.NoError(t, err)

			msgs := console.messages()
			if !tt.warning {
				assert.Empty(t, msgs)
				return
			}
			require.Len(t, msgs, 1)
			assert.Contains(t, msgs[0], "no-bare-strings")
			assert.Contains(t, msgs[0], tt.addons[0])
		})
	}
}

func TestAdvisory_NilProject(t *testing.T) {
	t.Parallel()

	console := &recordingConsole{}
	_, err := stage.New(t.TempDir(), baseOptions(t, &scriptedEngine{}, console))
	require.NoError(t, err)
	assert.Empty(t, console.messages())
}
