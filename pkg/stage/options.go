package stage

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dkoosis/hbslint/internal/metrics"
	"github.com/dkoosis/hbslint/pkg/lint"
)

// Fixed naming of stage inputs and outputs.
const (
	InputExtension  = ".hbs"
	OutputExtension = ".template.lint-test.js"
	// OutputPattern selects generated stubs in an output tree.
	OutputPattern = "**/*" + OutputExtension
)

// Options configures a Stage. Built once at startup and read-only after.
type Options struct {
	// Persist enables on-disk caching of per-file results. Nil means true.
	Persist *bool
	// Annotation labels the stage in logs.
	Annotation string
	// Console receives the advisory and the pass summary. Defaults to stdout.
	Console Console
	// TestGenerator names a generator in the testgen registry. Empty
	// disables generated tests.
	TestGenerator string
	// GroupName bundles generated tests into one file per group.
	GroupName string
	// Project is consulted only for the localization advisory.
	Project *Project
	// Config is passed through to the lint engine and keys the cache.
	Config lint.Config
	// Engine builds the lint engine from Config.
	Engine lint.EngineFactory

	// OutputDir receives one output file per template.
	OutputDir string
	// CacheDir holds persisted results. Defaults to DefaultCacheDir().
	CacheDir string
	// Jobs bounds parallel engine invocations. Zero means GOMAXPROCS.
	Jobs    int
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Bool returns a pointer to b, for Options.Persist.
func Bool(b bool) *bool {
	return &b
}

// PersistEnabled reports the effective persist setting.
func (o Options) PersistEnabled() bool {
	return o.Persist == nil || *o.Persist
}

// DefaultCacheDir returns hbslint under the user cache dir, or under the
// system temp dir when there is none.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "hbslint")
	}
	return filepath.Join(os.TempDir(), "hbslint-cache")
}

// ResultsDir is where persisted per-file results live under cacheDir.
func ResultsDir(cacheDir string) string {
	return filepath.Join(cacheDir, "results")
}

type stdoutConsole struct{}

func (stdoutConsole) Log(msg string) {
	_, _ = os.Stdout.WriteString(msg + "\n")
}

func (o Options) withDefaults() Options {
	persist := o.PersistEnabled()
	o.Persist = &persist
	if o.Console == nil {
		o.Console = stdoutConsole{}
	}
	if o.CacheDir == "" {
		o.CacheDir = DefaultCacheDir()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Config == nil {
		o.Config = lint.Config{}
	}
	return o
}
