package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse/cli/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show CLI version information",
		Long:  `Display version information for the wheelhouse CLI.`,
		RunE:  runVersion,
	}
}

func runVersion(cmd *cobra.Command, _ []string) error {
	info := version.GetInfo()
	fmt.Fprintln(cmd.OutOrStdout(), info.String())
	return nil
}
