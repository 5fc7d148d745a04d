package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ordmap/pkg/version"
)

// NewRootCommand assembles the ordmap command tree.
func NewRootCommand() *cobra.Command {
	global := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "ordmap",
		Short: "Ordered map toolkit backed by a red-black tree",
		Long: `ordmap exercises an in-memory ordered map backed by a red-black tree.

Commands:
  run       Execute an operation script
  show      Draw the tree built from a list of keys
  bench     Run a randomized workload and report statistics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&global.ConfigPath, "config", "", "config file (default ./ordmap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&global.Quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().BoolVar(&global.NoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewRunCommand(global))
	rootCmd.AddCommand(NewShowCommand(global))
	rootCmd.AddCommand(NewBenchCommand(global))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())

			return err
		},
	}
}
