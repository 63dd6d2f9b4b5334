// Package build provides the archive-producing wheelhouse commands.
package build

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse/cli/internal/backend"
	"github.com/wheelhouse/cli/internal/cmdtypes"
	oerrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/output"
)

// NewBuildCmd creates the build command, producing both archives.
func NewBuildCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "build [path]",
		Short: "Build the source and binary archives",
		Long: `Build both distributable archives for a project.

This command resolves the project metadata from pyproject.toml, collects
the release file set, and writes a source archive (.tar.gz) and a binary
archive (.whl) to the output directory.

Arguments:
  path    Path to project directory (default: current directory)

Examples:
  # Build the project in the current directory
  wheelhouse build

  # Build another project into a custom directory
  wheelhouse build ./my-project --out-dir ./release`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(args, cfg, true, true)
		},
	}
}

// NewSdistCmd creates the sdist command.
func NewSdistCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "sdist [path]",
		Short: "Build the source archive",
		Long: `Build the source archive (.tar.gz) for a project.

Arguments:
  path    Path to project directory (default: current directory)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(args, cfg, true, false)
		},
	}
}

// NewWheelCmd creates the wheel command.
func NewWheelCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "wheel [path]",
		Short: "Build the binary archive",
		Long: `Build the binary archive (.whl) for a project.

Arguments:
  path    Path to project directory (default: current directory)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(args, cfg, false, true)
		},
	}
}

func runBuild(args []string, cfg *cmdtypes.GlobalConfig, sdist, wheel bool) error {
	ctx := context.Background()

	b, err := newBackend(args, cfg)
	if err != nil {
		return commandError(err)
	}
	outDir := cfg.Settings.OutDir

	if sdist {
		var filename string
		err := output.RunWithSpinner(ctx, func() error {
			var buildErr error
			filename, buildErr = b.BuildSdist(outDir)
			return buildErr
		}, output.WithTitle("Building source archive..."))
		if err != nil {
			return commandError(fmt.Errorf("building source archive: %w", err))
		}
		output.ArchiveWritten("sdist", filename)
	}

	if wheel {
		var filename string
		err := output.RunWithSpinner(ctx, func() error {
			var buildErr error
			filename, buildErr = b.BuildWheel(outDir)
			return buildErr
		}, output.WithTitle("Building binary archive..."))
		if err != nil {
			return commandError(fmt.Errorf("building binary archive: %w", err))
		}
		output.ArchiveWritten("wheel", filename)
	}

	return nil
}

// projectRoot resolves the optional positional path argument.
func projectRoot(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// newBackend constructs the build pipeline for the addressed project.
func newBackend(args []string, cfg *cmdtypes.GlobalConfig) (*backend.Backend, error) {
	return backend.New(backend.Options{
		Root:     projectRoot(args),
		Settings: cfg.Settings,
	})
}

// commandError attaches a process exit code to err unless it already
// carries one.
func commandError(err error) error {
	var exitErr *cmdtypes.ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &cmdtypes.ExitError{Code: oerrors.ExitCode(err), Err: err}
}
