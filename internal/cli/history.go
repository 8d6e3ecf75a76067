package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Vantage/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		file       string
		panels     []string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Summarize a recorded panel history",
		Long: `Reads a panel history exported by "serve --record" and summarizes how
each panel loaded: how often it rendered, failed, or was discarded as stale
because a newer selection overtook it.`,
		Example: `  vantage history --file history.json
  vantage history --file history.json --panels overview,benchmark --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer f.Close()

			events, err := history.LoadJSON(f)
			if err != nil {
				return fmt.Errorf("parsing history: %w", err)
			}

			summary := summarizeHistory(events, panels)
			out := cmd.OutOrStdout()
			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printHistorySummary(out, file, &summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to recorded history JSON file (required)")
	cmd.Flags().StringSliceVar(&panels, "panels", nil, "filter by panels (comma-separated)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "output the summary as JSON")

	return cmd
}

// PanelStats aggregates the loads of one panel.
type PanelStats struct {
	Rendered   int           `json:"rendered"`
	Stale      int           `json:"stale"`
	Failed     int           `json:"failed"`
	AvgElapsed time.Duration `json:"avg_elapsed"`
	MaxElapsed time.Duration `json:"max_elapsed"`
	LastError  string        `json:"last_error,omitempty"`
}

// HistorySummary is the result of summarizing a history file.
type HistorySummary struct {
	TotalEvents int                           `json:"total_events"`
	Filtered    int                           `json:"filtered"`
	Sessions    int                           `json:"sessions"`
	Loads       int                           `json:"loads"`
	Span        time.Duration                 `json:"span"`
	PerPanel    map[history.Panel]*PanelStats `json:"per_panel"`
}

func summarizeHistory(events []history.Event, panels []string) HistorySummary {
	keep := map[history.Panel]bool{}
	for _, p := range panels {
		keep[history.Panel(strings.TrimSpace(p))] = true
	}

	s := HistorySummary{
		TotalEvents: len(events),
		PerPanel:    map[history.Panel]*PanelStats{},
	}
	sessions := map[string]bool{}
	loads := map[string]bool{}
	var first, last time.Time
	totals := map[history.Panel]time.Duration{}

	for _, ev := range events {
		if len(keep) > 0 && !keep[ev.Panel] {
			s.Filtered++
			continue
		}
		sessions[ev.SessionID] = true
		if ev.Token > 0 {
			loads[fmt.Sprintf("%s/%d", ev.SessionID, ev.Token)] = true
		}
		if first.IsZero() || ev.Timestamp.Before(first) {
			first = ev.Timestamp
		}
		if ev.Timestamp.After(last) {
			last = ev.Timestamp
		}

		ps := s.PerPanel[ev.Panel]
		if ps == nil {
			ps = &PanelStats{}
			s.PerPanel[ev.Panel] = ps
		}
		switch ev.Outcome {
		case history.OutcomeRendered:
			ps.Rendered++
		case history.OutcomeStale:
			ps.Stale++
		case history.OutcomeFailed:
			ps.Failed++
			ps.LastError = ev.Error
		}
		totals[ev.Panel] += ev.Elapsed
		if ev.Elapsed > ps.MaxElapsed {
			ps.MaxElapsed = ev.Elapsed
		}
	}

	for p, ps := range s.PerPanel {
		n := ps.Rendered + ps.Stale + ps.Failed
		if n > 0 {
			ps.AvgElapsed = totals[p] / time.Duration(n)
		}
	}
	s.Sessions = len(sessions)
	s.Loads = len(loads)
	if !first.IsZero() {
		s.Span = last.Sub(first)
	}
	return s
}

func printHistorySummary(w io.Writer, file string, s *HistorySummary) {
	fmt.Fprintf(w, "--- History Summary (%s) ---\n", file)
	fmt.Fprintf(w, "  Total events:  %d\n", s.TotalEvents)
	fmt.Fprintf(w, "  Filtered:      %d\n", s.Filtered)
	fmt.Fprintf(w, "  Sessions:      %d\n", s.Sessions)
	fmt.Fprintf(w, "  Loads:         %d\n", s.Loads)
	fmt.Fprintf(w, "  Span:          %s\n", s.Span.Round(time.Millisecond))
	fmt.Fprintln(w)

	names := make([]string, 0, len(s.PerPanel))
	for p := range s.PerPanel {
		names = append(names, string(p))
	}
	sort.Strings(names)

	fmt.Fprintln(w, "  Per panel:")
	stale := 0
	for _, name := range names {
		ps := s.PerPanel[history.Panel(name)]
		stale += ps.Stale
		fmt.Fprintf(w, "    %-15s %3d rendered, %3d stale, %3d failed  avg %s\n",
			name, ps.Rendered, ps.Stale, ps.Failed, ps.AvgElapsed.Round(time.Millisecond))
		if ps.LastError != "" {
			fmt.Fprintf(w, "      last error: %s\n", ps.LastError)
		}
	}

	if stale > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.Repeat("=", 50))
		fmt.Fprintf(w, "%d panel responses arrived after a newer selection\n", stale)
		fmt.Fprintln(w, "and were discarded.")
		fmt.Fprintln(w, strings.Repeat("=", 50))
	}
}
