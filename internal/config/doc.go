// Package config loads hbslint settings.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--output, --test-generator, --group-name, ...)
//  2. Environment variables with the HBSLINT_ prefix (HBSLINT_OUTPUT,
//     HBSLINT_ENGINE_COMMAND, ...). Nested keys use an underscore.
//  3. .hbslint.yaml in the working directory or $XDG_CONFIG_HOME/hbslint
//  4. Hardcoded defaults
//
// The lint rule set itself is not read here. It lives in the file named by
// lint_config and is loaded verbatim by the lint package, since rule names
// are case sensitive.
package config
