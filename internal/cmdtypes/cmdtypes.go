// Package cmdtypes holds shared types passed between the command layer and
// subcommands. It exists to avoid import cycles between cmd packages.
package cmdtypes

import (
	"github.com/wheelhouse/cli/internal/config"
	"github.com/wheelhouse/cli/internal/errors"
)

// GlobalConfig carries state resolved by the root command's persistent
// pre-run into every subcommand.
type GlobalConfig struct {
	// Settings holds the effective configuration after merging defaults,
	// the config file, environment variables, and flags.
	Settings *config.Settings

	// ConfigPath is the config file that was loaded, if any.
	ConfigPath string

	// Verbose enables debug logging.
	Verbose bool
}

// Exit codes, re-exported so command packages only import cmdtypes.
const (
	ExitSuccess      = errors.ExitSuccess
	ExitGeneralError = errors.ExitGeneralError
	ExitConfigError  = errors.ExitConfigError
	ExitNotFound     = errors.ExitNotFound
)

// ExitError is re-exported for command RunE implementations.
type ExitError = errors.ExitError
