package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Vantage/internal/config"
	"github.com/SmitUplenchwar2687/Vantage/internal/mockapi"
)

func newGenerateCmd() *cobra.Command {
	var (
		output string
		seed   int64
		count  int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sample fixture files and config",
		Long: `Generates sample data for testing and experimentation.

Use "generate fixtures" to create a mock backend fixture file.
Use "generate config" to create an example config file.`,
	}

	fixturesCmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate a mock backend fixture file",
		Long: `Creates businesses across five industries with a year of simulated
reviews around Lagos, aggregated into everything the backend serves:
overview, monthly rating trend, 60-day sentiment, 30-day deltas,
industry benchmarks and per-location sentiment.`,
		Example: `  vantage generate fixtures --output fixtures.json --count 50
  vantage generate fixtures --seed 42 --count 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = "fixtures.json"
			}

			f := mockapi.Generate(seed, count)
			if err := f.Save(output); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d businesses to %s\n", len(f.Businesses), output)
			fmt.Fprintf(out, "  Seed:        %d\n", seed)
			fmt.Fprintf(out, "  Industries:  %d\n", len(f.Benchmarks))
			fmt.Fprintf(out, "  As of:       %s\n", f.GeneratedAt.Format(time.DateOnly))
			return nil
		},
	}

	fixturesCmd.Flags().StringVar(&output, "output", "fixtures.json", "output file path")
	fixturesCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	fixturesCmd.Flags().IntVar(&count, "count", 50, "number of businesses to generate")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Generate an example config file",
		Long:  `Writes the default configuration. The extension picks the format: .json, .yaml or .toml.`,
		Example: `  vantage generate config --output vantage.yaml
  vantage generate config --output vantage.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = "vantage.yaml"
			}
			if err := config.WriteExample(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated example config at %s\n", output)
			return nil
		},
	}

	configCmd.Flags().StringVar(&output, "output", "vantage.yaml", "output file path")

	cmd.AddCommand(fixturesCmd, configCmd)
	return cmd
}
