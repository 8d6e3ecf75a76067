package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Vantage/internal/chart"
	"github.com/SmitUplenchwar2687/Vantage/internal/dashboard"
	"github.com/SmitUplenchwar2687/Vantage/internal/view"
)

func newSnapshotCmd() *cobra.Command {
	var (
		business   string
		chartsDir  string
		outputJSON bool
		opts       = defaultDashboardOptions()
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load one business and print its dashboard panels",
		Long: `Opens a dashboard session, loads a business (the first one by default)
and the location map, then prints every panel to the terminal.

Panels that fail to load are left empty and the command exits non-zero.`,
		Example: `  vantage snapshot
  vantage snapshot --business 7 --charts-dir ./charts
  vantage snapshot --api-url http://localhost:8000/api --json`,
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

			if chartsDir != "" {
				if err := writeCharts(ctx, env.session, chartsDir); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(snap); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, renderSnapshot(snap))
			}

			if loadErr != nil {
				return fmt.Errorf("some panels failed to load: %w", loadErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&business, "business", "", "business id to load (default: first listed)")
	cmd.Flags().StringVar(&chartsDir, "charts-dir", "", "write the three chart SVGs into this directory")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "output the snapshot as JSON")
	opts.addFlags(cmd)

	return cmd
}

// writeCharts saves every rendered canvas as <dir>/<canvas>.svg.
func writeCharts(ctx context.Context, sess *dashboard.Session, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating charts dir: %w", err)
	}
	for _, c := range chart.Canvases {
		body, err := sess.Charts().SVG(ctx, c)
		if err != nil {
			return err
		}
		if body == nil {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, string(c)+".svg"), body, 0o644); err != nil {
			return fmt.Errorf("writing %s chart: %w", c, err)
		}
	}
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f172a")).MarginBottom(1)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#cbd5e1")).
			Padding(0, 1).
			Width(24)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))

	trustColors = map[string]lipgloss.Color{
		view.TrustGood:    lipgloss.Color("#10b981"),
		view.TrustAverage: lipgloss.Color("#f59e0b"),
		view.TrustPoor:    lipgloss.Color("#ef4444"),
	}
	toneColors = map[view.Tone]lipgloss.Color{
		view.ToneFavorable:   lipgloss.Color("#10b981"),
		view.ToneUnfavorable: lipgloss.Color("#ef4444"),
		view.ToneNeutral:     lipgloss.Color("#64748b"),
	}
)

func card(label string, lines ...string) string {
	body := append([]string{labelStyle.Render(label)}, lines...)
	return cardStyle.Render(strings.Join(body, "\n"))
}

func deltaLine(d view.Delta) string {
	return lipgloss.NewStyle().Foreground(toneColors[d.Tone]).Render(d.Text)
}

// renderSnapshot lays the panels out for a terminal.
func renderSnapshot(snap dashboard.Snapshot) string {
	var sb strings.Builder

	title := "Reputation Analytics"
	for _, o := range snap.Businesses {
		if o.ID == snap.BusinessID {
			title += " · " + o.Label
		}
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	if ov := snap.Overview; ov != nil {
		trust := valueStyle.Foreground(trustColors[ov.View.TrustClass]).Render(ov.View.TrustScore)
		var rating, volume, response string
		if d := snap.Deltas; d != nil {
			rating = deltaLine(d.View.Rating)
			volume = deltaLine(d.View.Sentiment) + mutedStyle.Render(" neg. sentiment")
			response = deltaLine(d.View.ResponseRate)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			card("Trust Score", trust, mutedStyle.Render(ov.View.IndustryAvg)),
			card("Weighted Rating", valueStyle.Render(ov.View.Rating), rating),
			card("Review Volume", valueStyle.Render(ov.View.Volume), volume),
			card("Response Rate", valueStyle.Render(ov.View.ResponseRate), response),
		))
	} else {
		sb.WriteString(mutedStyle.Render("Overview unavailable"))
	}
	sb.WriteString("\n\n")

	for _, c := range chart.Canvases {
		ch, ok := snap.Charts[c]
		if !ok {
			sb.WriteString(labelStyle.Render(string(c)) + "  " + mutedStyle.Render("unavailable") + "\n")
			continue
		}
		sb.WriteString(labelStyle.Render(ch.Title) + "\n")
		for _, ds := range ch.Datasets {
			parts := make([]string, 0, len(ds.Data))
			for i, v := range ds.Data {
				label := ""
				if i < len(ch.Labels) {
					label = ch.Labels[i] + " "
				}
				parts = append(parts, label+view.Number(v))
			}
			sb.WriteString("  " + ds.Label + ": " + strings.Join(parts, ", ") + "\n")
		}
	}
	sb.WriteString("\n")

	m := snap.Map
	sb.WriteString(labelStyle.Render("Geographic Sentiment") + "\n")
	fmt.Fprintf(&sb, "  %d locations (%s)\n", len(m.Markers), m.State)
	if m.Insight != "" {
		sb.WriteString("  " + m.Insight + "\n")
	}
	return sb.String()
}
