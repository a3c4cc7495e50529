package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dkoosis/hbslint/internal/logging"
	"github.com/dkoosis/hbslint/pkg/engine"
	"github.com/dkoosis/hbslint/pkg/lint"
	"github.com/dkoosis/hbslint/pkg/stage"
)

// File lookup.
const (
	FileName  = ".hbslint"
	FileType  = "yaml"
	EnvPrefix = "HBSLINT"
)

// Config is the resolved application configuration.
type Config struct {
	Input         string       `mapstructure:"input"`
	Output        string       `mapstructure:"output"`
	Persist       bool         `mapstructure:"persist"`
	Annotation    string       `mapstructure:"annotation"`
	TestGenerator string       `mapstructure:"test_generator"`
	GroupName     string       `mapstructure:"group_name"`
	Project       string       `mapstructure:"project"`
	CacheDir      string       `mapstructure:"cache_dir"`
	Jobs          int          `mapstructure:"jobs"`
	LogLevel      string       `mapstructure:"log_level"`
	LintConfig    string       `mapstructure:"lint_config"`
	Engine        EngineConfig `mapstructure:"engine"`
	SARIFOutput   string       `mapstructure:"sarif_output"`
	CheckOutput   string       `mapstructure:"check_output"`
	FailOnError   bool         `mapstructure:"fail_on_error"`
	MetricsAddr   string       `mapstructure:"metrics_addr"`
}

// EngineConfig describes the external lint command.
type EngineConfig struct {
	Command      []string `mapstructure:"command"`
	Format       string   `mapstructure:"format"`
	ConfigFlag   string   `mapstructure:"config_flag"`
	FilenameFlag string   `mapstructure:"filename_flag"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Input:      "app",
		Output:     filepath.Join("dist", "lint"),
		Persist:    true,
		Annotation: "TemplateLinter",
		Project:    ".",
		CacheDir:   stage.DefaultCacheDir(),
		Jobs:       runtime.GOMAXPROCS(0),
		LogLevel:   logging.LevelInfo,
		LintConfig: lint.DefaultConfigFile,
		Engine: EngineConfig{
			Command:      []string{"npx", "ember-template-lint", "--format=json"},
			Format:       string(engine.FormatJSON),
			ConfigFlag:   engine.DefaultConfigFlag,
			FilenameFlag: engine.DefaultFilenameFlag,
		},
	}
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("input", d.Input)
	v.SetDefault("output", d.Output)
	v.SetDefault("persist", d.Persist)
	v.SetDefault("annotation", d.Annotation)
	v.SetDefault("test_generator", d.TestGenerator)
	v.SetDefault("group_name", d.GroupName)
	v.SetDefault("project", d.Project)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("lint_config", d.LintConfig)
	v.SetDefault("engine.command", d.Engine.Command)
	v.SetDefault("engine.format", d.Engine.Format)
	v.SetDefault("engine.config_flag", d.Engine.ConfigFlag)
	v.SetDefault("engine.filename_flag", d.Engine.FilenameFlag)
	v.SetDefault("sarif_output", d.SARIFOutput)
	v.SetDefault("check_output", d.CheckOutput)
	v.SetDefault("fail_on_error", d.FailOnError)
	v.SetDefault("metrics_addr", d.MetricsAddr)
}

// New returns a viper instance with defaults, env binding and the config
// file search path set up. configFile, when non-empty, replaces the search.
func New(configFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		return v
	}
	v.SetConfigName(FileName)
	v.SetConfigType(FileType)
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "hbslint"))
	}
	return v
}

// BindFlags binds every flag in fs whose name matches a key, with dashes in
// flag names standing for underscores.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if strings.HasPrefix(key, "engine_") {
			key = "engine." + strings.TrimPrefix(key, "engine_")
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// Load reads the config file, if any, and decodes v into a Config. A
// missing default config file is not an error; a missing explicit one is.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if !engine.Format(c.Engine.Format).Valid() {
		return fmt.Errorf("invalid engine.format %q: expected %q, %q or %q",
			c.Engine.Format, engine.FormatJSON, engine.FormatSARIF, engine.FormatAuto)
	}
	if len(c.Engine.Command) == 0 {
		return errors.New("engine.command must not be empty")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("invalid jobs %d: must not be negative", c.Jobs)
	}
	return nil
}

// EngineSpec converts the engine section for the engine package.
func (c *Config) EngineSpec() engine.CommandSpec {
	return engine.CommandSpec{
		Argv:         append([]string(nil), c.Engine.Command...),
		Format:       engine.Format(c.Engine.Format),
		ConfigFlag:   c.Engine.ConfigFlag,
		FilenameFlag: c.Engine.FilenameFlag,
		Dir:          c.Project,
	}
}

// LintConfigPath resolves lint_config against the project root.
func (c *Config) LintConfigPath() string {
	if filepath.IsAbs(c.LintConfig) {
		return c.LintConfig
	}
	return filepath.Join(c.Project, c.LintConfig)
}
