package stage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dkoosis/hbslint/pkg/lint"
)

// BareStringsRule must be configured when a localization add-on is used.
const BareStringsRule = "no-bare-strings"

// localizationAddons are add-ons that translate template strings.
var localizationAddons = []string{"ember-intl", "ember-i18n"}

// Project is the consuming application, used only for advisories.
type Project struct {
	Root   string
	Addons []string
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// LoadProject reads the dependency names from root/package.json. A missing
// package.json yields a project without add-ons.
func LoadProject(root string) (*Project, error) {
	p := &Project{Root: root}

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return nil, fmt.Errorf("read package.json: %w", err)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("decode package.json: %w", err)
	}
	for name := range pkg.Dependencies {
		p.Addons = append(p.Addons, name)
	}
	for name := range pkg.DevDependencies {
		if _, dup := pkg.Dependencies[name]; !dup {
			p.Addons = append(p.Addons, name)
		}
	}
	sort.Strings(p.Addons)
	return p, nil
}

// Uses reports whether the project depends on the named add-on.
func (p *Project) Uses(name string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Addons {
		if a == name {
			return true
		}
	}
	return false
}

// localizationAdvisory returns the warning to print when the project uses a
// localization add-on but the lint config leaves BareStringsRule unset.
func localizationAdvisory(p *Project, cfg lint.Config) (string, bool) {
	if cfg.HasRule(BareStringsRule) {
		return "", false
	}
	for _, addon := range localizationAddons {
		if p.Uses(addon) {
			return fmt.Sprintf("The `%s` rule must be configured when using a localization framework (`%s`). "+
				"To prevent this warning, add the following to your `%s`:\n\n  rules:\n    %s: true\n",
				BareStringsRule, addon, lint.DefaultConfigFile, BareStringsRule), true
		}
	}
	return "", false
}
