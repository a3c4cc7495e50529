// hbslint lints Handlebars templates as a build stage.
//
// Usage:
//
//	hbslint build -i app -o dist/lint --test-generator qunit
//	hbslint build --group-name templates --test-generator mocha --fail-on-error
//	hbslint watch --metrics-addr :9464
//
// Every template X.hbs produces X.template.lint-test.js in the output tree.
// With a group name the per-file stubs are bundled into one
// <group>.template.lint-test.js instead. Lint errors are printed as one
// summary block per build pass.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dkoosis/hbslint/internal/version"
	"github.com/dkoosis/hbslint/pkg/stage"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries a specific exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "hbslint: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "hbslint: %v\n", err)

	var cfgErr *stage.ConfigError
	if errors.As(err, &cfgErr) {
		return exitUsage
	}
	return exitFailed
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "hbslint",
		Short:         "Lint Handlebars templates as a build stage",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(version.String() + "\n")

	root.PersistentFlags().StringP("config", "c", "", "config file (default is ./.hbslint.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")

	root.AddCommand(
		newBuildCmd(stdout, stderr),
		newWatchCmd(stdout, stderr),
		newGeneratorsCmd(stdout),
		newCleanCmd(stdout, stderr),
		newVersionCmd(stdout),
	)
	return root
}
