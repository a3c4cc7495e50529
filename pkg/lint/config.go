package lint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the engine configuration passed through untouched (rule set,
// plugins, ignore lists). Keys are kept case-exact.
type Config map[string]any

// DefaultConfigFile is the rc file looked up when no path is configured.
const DefaultConfigFile = ".template-lintrc.yaml"

// LoadConfigFile reads a YAML (or JSON) rc file. A missing file yields an
// empty config.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return nil, fmt.Errorf("read lint config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes into a Config.
func ParseConfig(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode lint config: %w", err)
	}
	cfg, _ := normalize(raw).(map[string]any)
	if cfg == nil {
		cfg = map[string]any{}
	}
	return Config(cfg), nil
}

// Canonical returns a stable encoding of the config: JSON with object keys
// sorted at every level. Equal configs encode to equal bytes.
func (c Config) Canonical() ([]byte, error) {
	m := map[string]any(c)
	if m == nil {
		m = map[string]any{}
	}
	data, err := json.Marshal(normalize(m))
	if err != nil {
		return nil, fmt.Errorf("encode lint config: %w", err)
	}
	return data, nil
}

// Rules returns the "rules" section, or nil.
func (c Config) Rules() map[string]any {
	rules, _ := normalize(c["rules"]).(map[string]any)
	return rules
}

// HasRule reports whether a rule is configured at all, enabled or not.
func (c Config) HasRule(name string) bool {
	_, ok := c.Rules()[name]
	return ok
}

// normalize turns YAML's map[any]any into map[string]any so the value tree
// can be JSON encoded.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case Config:
		return normalize(map[string]any(t))
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
