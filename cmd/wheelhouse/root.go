package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse/cli/internal/cmd/build"
	"github.com/wheelhouse/cli/internal/cmdtypes"
	"github.com/wheelhouse/cli/internal/config"
	"github.com/wheelhouse/cli/internal/output"
	"github.com/wheelhouse/cli/internal/version"
)

var (
	// Global flags
	flagConfig  string
	flagOutDir  string
	flagVerbose bool
)

// newRootCmd creates the base command for the wheelhouse CLI.
func newRootCmd() *cobra.Command {
	cfg := &cmdtypes.GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "wheelhouse",
		Short: "Python packaging build backend",
		Long: `wheelhouse builds distributable Python archives from pyproject.toml.

It provides commands to:
  - Build source archives (sdist) and binary archives (wheel)
  - Resolve project metadata, including VCS-derived versions
  - Inspect the core metadata and build requirements of a project`,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return initializeGlobals(c, cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file (env: WHEELHOUSE_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&flagOutDir, "out-dir", "o", "", "directory archives are written to (env: WHEELHOUSE_OUT_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "increase output verbosity")

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(build.NewBuildCmd(cfg))
	rootCmd.AddCommand(build.NewSdistCmd(cfg))
	rootCmd.AddCommand(build.NewWheelCmd(cfg))
	rootCmd.AddCommand(build.NewMetadataCmd(cfg))
	rootCmd.AddCommand(build.NewRequiresCmd(cfg))

	return rootCmd
}

// initializeGlobals sets up logging and loads config based on global flags.
func initializeGlobals(_ *cobra.Command, cfg *cmdtypes.GlobalConfig) error {
	// Set up logging
	output.SetupLogging(flagVerbose)

	// Log version info at debug level
	info := version.GetInfo()
	output.Debug("wheelhouse started", "version", info.Version)

	settings, err := config.NewLoader().Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags win over file and environment values.
	if flagOutDir != "" {
		settings.OutDir = flagOutDir
	}

	cfg.Settings = settings
	cfg.ConfigPath = flagConfig
	cfg.Verbose = flagVerbose
	return nil
}
