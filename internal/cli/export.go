package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Vantage/internal/export"
)

func newExportCmd() *cobra.Command {
	var (
		business string
		output   string
		opts     = defaultDashboardOptions()
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a business dashboard to an Excel workbook",
		Long: `Loads a business like "snapshot" does and writes every panel to an .xlsx
workbook, one sheet per panel.`,
		Example: `  vantage export --output dashboard.xlsx
  vantage export --business 7 --output mama-put.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			loadErr := env.start(ctx, business)

			snap := env.session.Snapshot()
			if err := export.WriteFile(snap, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported business %s to %s\n", snap.BusinessID, output)

			if loadErr != nil {
				return fmt.Errorf("some panels failed to load: %w", loadErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&business, "business", "", "business id to export (default: first listed)")
	cmd.Flags().StringVar(&output, "output", "dashboard.xlsx", "output workbook path")
	opts.addFlags(cmd)

	return cmd
}
