package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/version"
)

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, commit, date := version.Info()
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "facefocus %s (commit: %s, built: %s)\n", v, commit, date)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
