package build

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse/cli/internal/cmdtypes"
)

// NewMetadataCmd creates the metadata command.
func NewMetadataCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata [path]",
		Short: "Print the resolved core metadata",
		Long: `Resolve project metadata from pyproject.toml and print the core
metadata document (the PKG-INFO / METADATA payload) to stdout.

Dynamic fields such as a VCS-derived version are resolved exactly as they
would be during an archive build.

Arguments:
  path    Path to project directory (default: current directory)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runMetadata(c, args, cfg)
		},
	}
}

func runMetadata(c *cobra.Command, args []string, cfg *cmdtypes.GlobalConfig) error {
	b, err := newBackend(args, cfg)
	if err != nil {
		return commandError(err)
	}

	meta, err := b.Resolve()
	if err != nil {
		return commandError(fmt.Errorf("resolving metadata: %w", err))
	}

	_, err = c.OutOrStdout().Write(meta.CoreMetadata())
	return err
}
