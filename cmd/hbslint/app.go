package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dkoosis/hbslint/internal/config"
	"github.com/dkoosis/hbslint/internal/console"
	"github.com/dkoosis/hbslint/internal/logging"
	"github.com/dkoosis/hbslint/internal/metrics"
	"github.com/dkoosis/hbslint/internal/version"
	"github.com/dkoosis/hbslint/pkg/check"
	"github.com/dkoosis/hbslint/pkg/engine"
	"github.com/dkoosis/hbslint/pkg/group"
	"github.com/dkoosis/hbslint/pkg/lint"
	"github.com/dkoosis/hbslint/pkg/sarif"
	"github.com/dkoosis/hbslint/pkg/stage"
)

// addStageFlags registers the flags shared by build and watch. Names map
// onto config keys with dashes for underscores.
func addStageFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", "", "template root directory")
	fs.StringP("output", "o", "", "output directory for generated tests")
	fs.Bool("persist", true, "cache per-file results on disk")
	fs.String("annotation", "", "label for log lines")
	fs.String("test-generator", "", "generate tests with: qunit, mocha")
	fs.String("group-name", "", "bundle generated tests into <name>.template.lint-test.js")
	fs.String("project", "", "project root (package.json, lint config, engine working dir)")
	fs.String("cache-dir", "", "cache directory")
	fs.IntP("jobs", "j", 0, "parallel lint processes")
	fs.String("lint-config", "", "lint rule file, relative to the project root")
	fs.StringSlice("engine-command", nil, "lint command and arguments")
	fs.String("engine-format", "", "lint command output: json, sarif")
	fs.String("engine-config-flag", "", `flag that passes the config file ("-" to disable)`)
	fs.String("engine-filename-flag", "", `flag that passes the template name ("-" to disable)`)
	fs.String("sarif-output", "", "write a SARIF report of each pass to this path")
	fs.String("check-output", "", "write a lintkit-check report of each pass to this path")
	fs.Bool("fail-on-error", false, "exit 1 when a pass reports template linting errors")
}

// loadConfig resolves configuration for cmd from file, env and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	v := config.New(configFile)
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, &exitError{code: exitUsage, err: err}
	}
	return cfg, nil
}

// pipeline is a configured lint node plus what the commands need around it.
type pipeline struct {
	cfg  *config.Config
	node group.Node
	log  *slog.Logger
}

func newPipeline(cfg *config.Config, stdout, stderr io.Writer, rec *metrics.Recorder) (*pipeline, error) {
	log := logging.New(stderr, cfg.LogLevel)

	lintCfg, err := lint.LoadConfigFile(cfg.LintConfigPath())
	if err != nil {
		return nil, &exitError{code: exitUsage, err: err}
	}
	project, err := stage.LoadProject(cfg.Project)
	if err != nil {
		log.Warn("project not loaded, skipping localization advisory", "error", err)
		project = nil
	}

	node, err := group.Create(cfg.Input, stage.Options{
		Persist:       stage.Bool(cfg.Persist),
		Annotation:    cfg.Annotation,
		Console:       console.New(stdout),
		TestGenerator: cfg.TestGenerator,
		GroupName:     cfg.GroupName,
		Project:       project,
		Config:        lintCfg,
		Engine:        engine.Factory(cfg.EngineSpec()),
		OutputDir:     cfg.Output,
		CacheDir:      cfg.CacheDir,
		Jobs:          cfg.Jobs,
		Logger:        log,
		Metrics:       rec,
	})
	if err != nil {
		return nil, err
	}
	return &pipeline{cfg: cfg, node: node, log: log}, nil
}

func (p *pipeline) Close() error {
	if c, ok := p.node.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// build runs one pass and writes the configured reports. Lint errors fail
// the pass only with fail_on_error.
func (p *pipeline) build(ctx context.Context) error {
	pass, err := p.node.Build(ctx)
	if err != nil {
		return err
	}
	if err := p.writeReports(pass); err != nil {
		return err
	}
	if p.cfg.FailOnError && pass.Len() > 0 {
		return &exitError{code: exitFailed}
	}
	return nil
}

func (p *pipeline) writeReports(pass *stage.Pass) error {
	diags := pass.Diagnostics()

	if p.cfg.SARIFOutput != "" {
		b := sarif.NewBuilder("hbslint", version.Version)
		for _, d := range diags {
			b.AddDiagnostic(d, d.ModuleID+stage.InputExtension)
		}
		if err := writeFileWith(p.cfg.SARIFOutput, func(w io.Writer) error {
			_, err := b.WriteTo(w)
			return err
		}); err != nil {
			return fmt.Errorf("write sarif report: %w", err)
		}
		p.log.Debug("wrote sarif report", "path", p.cfg.SARIFOutput)
	}

	if p.cfg.CheckOutput != "" {
		stats := pass.Stats()
		report := check.NewReport(check.Input{
			Files:       stats.Files,
			CacheHits:   stats.CacheHits,
			Diagnostics: diags,
			Extension:   stage.InputExtension,
		})
		if err := check.WriteFile(p.cfg.CheckOutput, report); err != nil {
			return err
		}
		p.log.Debug("wrote check report", "path", p.cfg.CheckOutput)
	}
	return nil
}

func newBuildCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run one lint pass over the template tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg, stdout, stderr, nil)
			if err != nil {
				return err
			}
			defer p.Close()
			return p.build(cmd.Context())
		},
	}
	addStageFlags(cmd.Flags())
	return cmd
}

func newCleanCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached lint results and group staging files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logging.New(stderr, cfg.LogLevel)

			store, err := openResults(cfg.CacheDir)
			if err != nil {
				return err
			}
			if err := store.DropAll(); err != nil {
				return fmt.Errorf("drop cached results: %w", err)
			}
			if err := removeAll(group.StagingRoot(cfg.CacheDir)); err != nil {
				return err
			}
			log.Info("cache cleaned", "dir", cfg.CacheDir)
			fmt.Fprintf(stdout, "cleaned %s\n", filepath.Clean(cfg.CacheDir))
			return nil
		},
	}
	cmd.Flags().String("cache-dir", "", "cache directory")
	return cmd
}

func newGeneratorsCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "generators",
		Short: "List the available test generators",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			for _, name := range generatorNames() {
				fmt.Fprintln(stdout, name)
			}
		},
	}
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(stdout, version.String())
		},
	}
}

// isCanceled reports whether err only signals shutdown.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
