// Package group builds the node a pipeline uses for template linting: the
// plain lint stage, or the stage followed by a concatenator that bundles
// every generated stub into a single group test file.
package group

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dkoosis/hbslint/pkg/stage"
	"github.com/dkoosis/hbslint/pkg/testgen"
)

// Node is one buildable step.
type Node interface {
	Build(ctx context.Context) (*stage.Pass, error)
}

// Create returns the lint stage for inputDir. With a group name the stage
// writes its stubs into a staging directory and the returned node
// concatenates them into <OutputDir>/<group>.template.lint-test.js.
func Create(inputDir string, opts stage.Options) (Node, error) {
	if opts.GroupName == "" {
		return stage.New(inputDir, opts)
	}

	gen, err := groupGenerator(opts)
	if err != nil {
		return nil, err
	}

	outputDir := opts.OutputDir
	if opts.CacheDir == "" {
		opts.CacheDir = stage.DefaultCacheDir()
	}
	opts.OutputDir = StagingDir(opts.CacheDir, opts.GroupName)

	st, err := stage.New(inputDir, opts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Concat{
		Stage:     st,
		Generator: gen,
		GroupName: opts.GroupName,
		OutputDir: outputDir,
		Logger:    logger,
	}, nil
}

// StagingRoot holds per-group stub directories under cacheDir.
func StagingRoot(cacheDir string) string {
	return filepath.Join(cacheDir, "staging")
}

// StagingDir is where the stage writes the stubs of one group.
func StagingDir(cacheDir, groupName string) string {
	return filepath.Join(StagingRoot(cacheDir), groupName)
}

func groupGenerator(opts stage.Options) (testgen.Generator, error) {
	if opts.TestGenerator == "" {
		return nil, &stage.ConfigError{
			Field: "groupName",
			Value: opts.GroupName,
			Err:   stage.ErrGroupWithoutGenerator,
		}
	}
	gen, err := testgen.Lookup(opts.TestGenerator)
	if err != nil {
		return nil, &stage.ConfigError{
			Field:  "testGenerator",
			Value:  opts.TestGenerator,
			Err:    stage.ErrUnknownGenerator,
			Detail: "groupName requires a known generator",
		}
	}
	return gen, nil
}

// Concat runs its stage, then joins the stage's stubs under one suite.
type Concat struct {
	Stage     *stage.Stage
	Generator testgen.Generator
	GroupName string
	OutputDir string
	Logger    *slog.Logger
}

// OutputFile is the path of the group file.
func (c *Concat) OutputFile() string {
	return filepath.Join(c.OutputDir, c.GroupName+stage.OutputExtension)
}

// Build runs the stage pass and writes the group file. The group file is
// not written when the pass fails.
func (c *Concat) Build(ctx context.Context) (*stage.Pass, error) {
	pass, err := c.Stage.RunBuildPass(ctx)
	if err != nil {
		return pass, err
	}

	stubs, err := Stubs(c.Stage.OutputDir())
	if err != nil {
		return pass, err
	}
	content, err := Concatenate(c.Generator, c.GroupName, c.Stage.OutputDir(), stubs)
	if err != nil {
		return pass, err
	}

	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return pass, fmt.Errorf("create group output dir: %w", err)
	}
	if err := os.WriteFile(c.OutputFile(), []byte(content), 0o644); err != nil {
		return pass, fmt.Errorf("write group file: %w", err)
	}
	c.Logger.Info("wrote group file", "group", c.GroupName, "stubs", len(stubs), "file", c.OutputFile())
	return pass, nil
}

// Close releases the stage's engine.
func (c *Concat) Close() error {
	return c.Stage.Close()
}

// Stubs lists generated stub files under dir as slash paths, in the order
// of the templates they were generated from. A missing dir has no stubs.
func Stubs(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), stage.OutputPattern, doublestar.WithFilesOnly())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select stubs: %w", err)
	}
	sort.Slice(matches, func(i, j int) bool {
		return templatePath(matches[i]) < templatePath(matches[j])
	})
	return matches, nil
}

// templatePath maps a stub path back to the template path it came from.
func templatePath(stub string) string {
	return strings.TrimSuffix(stub, stage.OutputExtension) + stage.InputExtension
}

// Concatenate returns the header, the content of every stub in order and
// the footer.
func Concatenate(gen testgen.Generator, groupName, dir string, stubs []string) (string, error) {
	fsys := os.DirFS(dir)
	buf := []byte(gen.SuiteHeader(stage.SuitePrefix + groupName))
	for _, rel := range stubs {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return "", fmt.Errorf("read stub %s: %w", rel, err)
		}
		buf = append(buf, data...)
	}
	buf = append(buf, gen.SuiteFooter()...)
	return string(buf), nil
}
