package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
	"github.com/SmitUplenchwar2687/Vantage/internal/chart"
	"github.com/SmitUplenchwar2687/Vantage/internal/dashboard"
	"github.com/SmitUplenchwar2687/Vantage/internal/view"
)

func testSnapshot() dashboard.Snapshot {
	ov := api.Overview{TrustScore: 85, IndustryAvgTrust: 70, WeightedRating: 4.4, TotalReviews: 1200, ResponseRate: 0.9}
	d := api.Deltas{DeltaRating: 0.2, DeltaNegSentiment: 0.05, DeltaResponseRate: -0.1}
	return dashboard.Snapshot{
		SessionID:  "s1",
		BusinessID: "7",
		Token:      3,
		Businesses: []dashboard.Option{{ID: "7", Label: "Mama Put (Food)", Industry: "Food"}},
		Overview: &dashboard.Panel[view.OverviewPanel, api.Overview]{
			View: view.RenderOverview(ov, view.DefaultFormatter()),
			Data: ov,
		},
		Deltas: &dashboard.Panel[view.DeltaPanel, api.Deltas]{
			View: view.RenderDeltas(d),
			Data: d,
		},
		Charts: map[chart.Canvas]chart.Chart{
			chart.CanvasSentimentDist: chart.BuildSentimentDist(api.SentimentDist{Positive: 6, Neutral: 3, Negative: 1}),
			chart.CanvasBenchmark: chart.BuildBenchmark(
				api.Benchmark{P50TrustScore: 65, P90TrustScore: 88, AvgResponseRate: 0.5},
				ov,
			),
		},
		Map: dashboard.MapView{
			Markers: []view.Marker{{Position: view.LatLng{Lat: 6.5, Lng: 3.4}, Radius: 12, Color: view.ColorPositive}},
			Insight: "Sentiment is consistent across both high and low volume locations.",
		},
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.xlsx")
	if err := WriteFile(testSnapshot(), path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	want := []string{SheetOverview, SheetDeltas, SheetTrend, SheetSentiment, SheetBenchmark, SheetLocations, SheetBusinesses}
	got := wb.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, got[i], want[i])
		}
	}

	checks := []struct {
		sheet, cell, want string
	}{
		{SheetOverview, "A1", "Metric"},
		{SheetOverview, "B2", "s1"},
		{SheetOverview, "B4", "85"},
		{SheetOverview, "B5", "good"},
		{SheetOverview, "B8", "1,200"},
		{SheetDeltas, "B2", "↑ 0.20"},
		{SheetDeltas, "C3", "unfavorable"},
		{SheetSentiment, "A2", "Positive"},
		{SheetSentiment, "B2", "6"},
		{SheetBenchmark, "B1", "This Business"},
		{SheetBenchmark, "D3", "95"},
		{SheetLocations, "D2", view.ColorPositive},
		{SheetBusinesses, "B2", "Mama Put (Food)"},
	}
	for _, c := range checks {
		v, err := wb.GetCellValue(c.sheet, c.cell)
		if err != nil {
			t.Fatalf("%s!%s: %v", c.sheet, c.cell, err)
		}
		if v != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, v, c.want)
		}
	}

	rows, err := wb.GetRows(SheetTrend)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("trend rows = %d, want header only", len(rows))
	}
}

func TestWrite_EmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(dashboard.Snapshot{}, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	wb, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()
	if v, _ := wb.GetCellValue(SheetDeltas, "A1"); v != "Metric" {
		t.Errorf("Deltas!A1 = %q", v)
	}
}
