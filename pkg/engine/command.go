// Package engine adapts external template lint tools to lint.Engine.
//
// Each Verify call runs the configured command once, writes the template
// source to its stdin and decodes the report it prints on stdout. Two report
// shapes are understood: the JSON printed by template linters (and ESLint
// style result arrays), and SARIF 2.1.0.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dkoosis/hbslint/internal/detect"
	"github.com/dkoosis/hbslint/pkg/lint"
	"github.com/dkoosis/hbslint/pkg/sarif"
)

// Format selects how command output is decoded.
type Format string

const (
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
	// FormatAuto sniffs every report.
	FormatAuto Format = "auto"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatSARIF, FormatAuto:
		return true
	}
	return false
}

// Defaults used when a CommandSpec leaves fields empty.
const (
	DefaultConfigFlag   = "--config-path"
	DefaultFilenameFlag = "--filename"
	TemplateExtension   = ".hbs"
)

// CommandSpec describes the external lint command.
type CommandSpec struct {
	// Argv is the command and its fixed arguments, e.g.
	// ["npx", "ember-template-lint", "--format=json", "--no-config-path"].
	Argv   []string
	Format Format
	// ConfigFlag receives the path of the canonical config file. Set to "-"
	// to never pass a config file.
	ConfigFlag string
	// FilenameFlag receives moduleID plus the template extension so the
	// tool can report and resolve per-file overrides.
	FilenameFlag string
	Dir          string
	Env          []string
}

// ErrNoCommand is returned when CommandSpec.Argv is empty.
var ErrNoCommand = errors.New("engine: no lint command configured")

// result of one process invocation.
type output struct {
	stdout   []byte
	stderr   []byte
	exitCode int
}

type runner func(argv []string, dir string, env []string, stdin string) (output, error)

// Command is a lint.Engine backed by an external process.
type Command struct {
	spec       CommandSpec
	configPath string
	run        runner
}

// NewCommand prepares the command. When the config is non-empty it is
// written once, canonically encoded, to a temporary file that is passed to
// every invocation; Close removes it.
func NewCommand(spec CommandSpec, cfg lint.Config) (*Command, error) {
	if len(spec.Argv) == 0 {
		return nil, ErrNoCommand
	}
	if spec.Format == "" {
		spec.Format = FormatJSON
	}
	if !spec.Format.Valid() {
		return nil, fmt.Errorf("engine: unknown output format %q", spec.Format)
	}
	if spec.ConfigFlag == "" {
		spec.ConfigFlag = DefaultConfigFlag
	}
	if spec.FilenameFlag == "" {
		spec.FilenameFlag = DefaultFilenameFlag
	}

	c := &Command{spec: spec, run: execRun}

	if len(cfg) > 0 && spec.ConfigFlag != "-" {
		path, err := writeConfig(cfg)
		if err != nil {
			return nil, err
		}
		c.configPath = path
	}
	return c, nil
}

// Factory returns a lint.EngineFactory building Command engines from spec.
func Factory(spec CommandSpec) lint.EngineFactory {
	return func(cfg lint.Config) (lint.Engine, error) {
		return NewCommand(spec, cfg)
	}
}

// Close removes the temporary config file, if any.
func (c *Command) Close() error {
	if c.configPath == "" {
		return nil
	}
	err := os.Remove(c.configPath)
	c.configPath = ""
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Args returns the full argv used for moduleID.
func (c *Command) Args(moduleID string) []string {
	argv := append([]string(nil), c.spec.Argv...)
	if c.configPath != "" {
		argv = append(argv, c.spec.ConfigFlag, c.configPath)
	}
	if c.spec.FilenameFlag != "-" {
		argv = append(argv, c.spec.FilenameFlag, moduleID+TemplateExtension)
	}
	return argv
}

// Verify lints source. A non-zero exit status is expected when the tool
// finds problems; it is an error only if nothing decodable was printed.
func (c *Command) Verify(source, moduleID string) ([]lint.Diagnostic, error) {
	argv := c.Args(moduleID)
	out, err := c.run(argv, c.spec.Dir, c.spec.Env, source)
	if err != nil {
		return nil, fmt.Errorf("engine: run %s: %w", argv[0], err)
	}

	if len(bytes.TrimSpace(out.stdout)) == 0 {
		if out.exitCode != 0 {
			return nil, fmt.Errorf("engine: %s exited with status %d: %s", argv[0], out.exitCode, strings.TrimSpace(string(out.stderr)))
		}
		return nil, nil
	}

	format := c.spec.Format
	if format == FormatAuto {
		switch detect.Sniff(out.stdout) {
		case detect.SARIF:
			format = FormatSARIF
		case detect.LintJSON:
			format = FormatJSON
		default:
			return nil, fmt.Errorf("engine: %s: unrecognized output %q", moduleID, truncate(out.stdout, 40))
		}
	}

	var diags []lint.Diagnostic
	switch format {
	case FormatSARIF:
		doc, derr := sarif.ReadBytes(out.stdout)
		if derr != nil {
			return nil, fmt.Errorf("engine: %s: %w", moduleID, derr)
		}
		diags = sarif.Diagnostics(doc, moduleID)
	default:
		diags, err = decodeJSON(out.stdout, moduleID)
		if err != nil {
			return nil, fmt.Errorf("engine: %s: %w", moduleID, err)
		}
	}
	return diags, nil
}

func execRun(argv []string, dir string, env []string, stdin string) (output, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := output{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.exitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}

func writeConfig(cfg lint.Config) (string, error) {
	data, err := cfg.Canonical()
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp("", "hbslint-config-*.json")
	if err != nil {
		return "", fmt.Errorf("engine: create config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("engine: write config file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("engine: write config file: %w", err)
	}
	return f.Name(), nil
}
