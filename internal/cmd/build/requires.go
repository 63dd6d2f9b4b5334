package build

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse/cli/internal/cmdtypes"
)

// NewRequiresCmd creates the requires command.
func NewRequiresCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var forFlag string

	c := &cobra.Command{
		Use:   "requires [path]",
		Short: "List extra build requirements",
		Long: `List the extra requirements needed to build an archive kind, one
per line. The backend is self-contained, so the list is normally empty.

Arguments:
  path    Path to project directory (default: current directory)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runRequires(c, args, cfg, forFlag)
		},
	}

	c.Flags().StringVar(&forFlag, "for", "wheel",
		"Archive kind to list requirements for: sdist, wheel")
	return c
}

func runRequires(c *cobra.Command, args []string, cfg *cmdtypes.GlobalConfig, kind string) error {
	b, err := newBackend(args, cfg)
	if err != nil {
		return commandError(err)
	}

	var requires []string
	switch kind {
	case "sdist":
		requires = b.RequiresForSdist()
	case "wheel":
		requires = b.RequiresForWheel()
	default:
		return &cmdtypes.ExitError{
			Code: cmdtypes.ExitGeneralError,
			Err:  fmt.Errorf("invalid archive kind %q (valid: sdist, wheel)", kind),
		}
	}

	for _, req := range requires {
		fmt.Fprintln(c.OutOrStdout(), req)
	}
	return nil
}
