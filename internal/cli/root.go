package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root vantage command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vantage",
		Short: "Reputation analytics dashboard",
		Long: `Vantage shows a business's reputation at a glance: trust score, rating
and sentiment trends, industry benchmarks and a map of sentiment by
location, all read from the analytics API.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newSnapshotCmd(),
		newExportCmd(),
		newHistoryCmd(),
		newMockAPICmd(),
		newGenerateCmd(),
	)

	return root
}
