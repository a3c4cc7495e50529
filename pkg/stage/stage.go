// Package stage implements the template lint filter stage: every template
// in an input tree is linted, build-failing diagnostics are collected for
// the pass summary, and an optional generated test file is written per
// template so a downstream test runner fails on lint errors.
package stage

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/dkoosis/hbslint/internal/metrics"
	"github.com/dkoosis/hbslint/pkg/filter"
	"github.com/dkoosis/hbslint/pkg/lint"
	"github.com/dkoosis/hbslint/pkg/testgen"
)

// SuitePrefix labels generated suites.
const SuitePrefix = "TemplateLint | "

// Result is the per-file outcome: retained diagnostics and the generated
// test source (empty without a generator).
type Result struct {
	Diagnostics []lint.Diagnostic `msgpack:"diagnostics"`
	Output      string            `msgpack:"output"`
}

// Stage lints templates under one input directory.
type Stage struct {
	inputDir  string
	opts      Options
	generator testgen.Generator
	engine    lint.Engine
	configKey []byte
	filter    *filter.Filter[Result]
	log       *slog.Logger
}

// New validates options, initializes the lint engine and prints the
// localization advisory when it applies.
func New(inputDir string, opts Options) (*Stage, error) {
	opts = opts.withDefaults()

	s := &Stage{
		inputDir: inputDir,
		opts:     opts,
		log:      opts.Logger.With("annotation", opts.Annotation),
	}

	if opts.TestGenerator != "" {
		g, err := testgen.Lookup(opts.TestGenerator)
		if err != nil {
			return nil, &ConfigError{
				Field:  "testGenerator",
				Value:  opts.TestGenerator,
				Err:    ErrUnknownGenerator,
				Detail: "expected one of: " + strings.Join(testgen.Names(), ", "),
			}
		}
		s.generator = g
	}
	if opts.GroupName != "" && s.generator == nil {
		return nil, &ConfigError{Field: "groupName", Value: opts.GroupName, Err: ErrGroupWithoutGenerator}
	}

	if opts.Engine == nil {
		return nil, &ConfigError{Field: "engine", Err: ErrNoEngine}
	}

	key, err := opts.Config.Canonical()
	if err != nil {
		return nil, err
	}
	s.configKey = key

	engine, err := opts.Engine(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("init lint engine: %w", err)
	}
	s.engine = engine

	if msg, ok := localizationAdvisory(opts.Project, opts.Config); ok {
		opts.Console.Log(styleWarning(opts.Console, msg))
	}

	var store filter.Store[Result]
	if opts.PersistEnabled() {
		ds, err := filter.OpenDiskStore[Result](ResultsDir(opts.CacheDir))
		if err != nil {
			return nil, err
		}
		store = ds
	}
	s.filter = filter.New[Result](filter.Options{
		InputDir:        inputDir,
		OutputDir:       opts.OutputDir,
		Extensions:      []string{InputExtension},
		TargetExtension: OutputExtension,
		Jobs:            opts.Jobs,
		Annotation:      opts.Annotation,
		Logger:          opts.Logger,
	}, store)

	return s, nil
}

// Options returns the effective options.
func (s *Stage) Options() Options {
	return s.opts
}

// InputDir returns the template root.
func (s *Stage) InputDir() string {
	return s.inputDir
}

// OutputDir returns where per-file outputs are written.
func (s *Stage) OutputDir() string {
	return s.opts.OutputDir
}

// Close releases the engine if it holds resources.
func (s *Stage) Close() error {
	if c, ok := s.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// CacheKey digests the lint config, generator, group, contents and path.
// Fields are length-prefixed so no two tuples share an encoding.
func (s *Stage) CacheKey(contents []byte, relPath string) string {
	h := sha256.New()
	writeField(h, s.configKey)
	writeField(h, []byte(s.opts.TestGenerator))
	writeField(h, []byte(s.opts.GroupName))
	writeField(h, contents)
	writeField(h, []byte(relPath))
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	_, _ = h.Write(n[:])
	_, _ = h.Write(b)
}

// ModuleID strips the extension from a relative path.
func ModuleID(relPath string) string {
	return strings.TrimSuffix(relPath, path.Ext(relPath))
}

// ProcessFile lints one template. Lint findings are returned as data; the
// error is reserved for engine failures.
func (s *Stage) ProcessFile(contents []byte, relPath string) (Result, error) {
	moduleID := ModuleID(relPath)

	ds, err := s.engine.Verify(string(contents), moduleID)
	if err != nil {
		return Result{}, fmt.Errorf("lint %s: %w", relPath, err)
	}
	for i := range ds {
		if ds[i].ModuleID == "" {
			ds[i].ModuleID = moduleID
		}
	}

	retained := lint.Retained(ds)
	s.log.Debug("linted template", "file", relPath, "reported", len(ds), "retained", len(retained))

	return Result{Diagnostics: retained, Output: s.generate(relPath, retained)}, nil
}

func (s *Stage) generate(relPath string, ds []lint.Diagnostic) string {
	if s.generator == nil {
		return ""
	}
	passed := len(ds) == 0
	msg := failureMessage(relPath, ds)

	if s.opts.GroupName != "" {
		return s.generator.Test(relPath, passed, msg)
	}
	return s.generator.SuiteHeader(SuitePrefix+relPath) +
		s.generator.Test("should pass TemplateLint", passed, msg) +
		s.generator.SuiteFooter()
}

func failureMessage(relPath string, ds []lint.Diagnostic) string {
	msg := relPath + " should pass TemplateLint."
	if len(ds) == 0 {
		return msg
	}
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = lint.Format(d)
	}
	return msg + "\n\n" + strings.Join(lines, "\n")
}

// PostProcessFile records the result's diagnostics in pass and returns the
// result unchanged.
func (s *Stage) PostProcessFile(pass *Pass, r Result) Result {
	pass.Add(r.Diagnostics...)
	return r
}

// RunBuildPass processes the whole input tree with a fresh Pass. The
// summary is printed once at the end, also when the pass fails; the pass
// error is still returned.
func (s *Stage) RunBuildPass(ctx context.Context) (pass *Pass, err error) {
	pass = NewPass()
	started := time.Now()
	log := s.log.With("pass", pass.ID)

	defer func() {
		n := pass.Len()
		if n > 0 {
			header := styleError(s.opts.Console, summaryHeader(n))
			s.opts.Console.Log(summary(header, pass.Errors()))
		}
		stats := pass.Stats()
		s.opts.Metrics.ObservePass(metrics.PassOutcome{
			Files:       stats.Files,
			CacheHits:   stats.CacheHits,
			Diagnostics: n,
			Duration:    time.Since(started),
			Failed:      err != nil,
		})
	}()

	stats, err := s.filter.Build(ctx, passTransform{stage: s, pass: pass})
	pass.setStats(stats)
	if err != nil {
		log.Error("build pass failed", "error", err)
		return pass, err
	}

	log.Info("build pass complete",
		"files", stats.Files,
		"cache_hits", stats.CacheHits,
		"removed", stats.Removed,
		"diagnostics", pass.Len(),
		"duration", time.Since(started).Round(time.Millisecond))
	return pass, nil
}

// Build runs one pass; it lets a Stage stand in wherever a build node is
// expected.
func (s *Stage) Build(ctx context.Context) (*Pass, error) {
	return s.RunBuildPass(ctx)
}

// passTransform binds the stage callbacks to one pass for the filter host.
type passTransform struct {
	stage *Stage
	pass  *Pass
}

func (t passTransform) CacheKey(contents []byte, relPath string) string {
	return t.stage.CacheKey(contents, relPath)
}

func (t passTransform) ProcessFile(contents []byte, relPath string) (Result, error) {
	return t.stage.ProcessFile(contents, relPath)
}

func (t passTransform) PostProcessFile(r Result) Result {
	return t.stage.PostProcessFile(t.pass, r)
}

func (t passTransform) Output(r Result) string {
	return r.Output
}
