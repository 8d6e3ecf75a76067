package view

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
)

func TestTrustClass(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, TrustGood},
		{80, TrustGood},
		{79.99, TrustAverage},
		{60, TrustAverage},
		{59.99, TrustPoor},
		{0, TrustPoor},
		{-5, TrustPoor},
	}
	for _, tt := range tests {
		if got := TrustClass(tt.score); got != tt.want {
			t.Errorf("TrustClass(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestRenderOverview(t *testing.T) {
	got := RenderOverview(api.Overview{
		TrustScore:       72.5,
		IndustryAvgTrust: 68.6,
		WeightedRating:   4.21,
		TotalReviews:     1234567,
		ResponseRate:     0.875,
	}, DefaultFormatter())

	want := OverviewPanel{
		TrustScore:   "72.5",
		TrustClass:   TrustAverage,
		TrustCSS:     "metric trust-score-avg",
		IndustryAvg:  "Industry Avg: 69",
		Rating:       "4.21",
		Volume:       "1,234,567",
		ResponseRate: "87.5%",
	}
	if got != want {
		t.Errorf("RenderOverview() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestFormatter_ThousandsLocale(t *testing.T) {
	f, err := NewFormatter("de")
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Thousands(1234567); got != "1.234.567" {
		t.Errorf("de Thousands = %q, want 1.234.567", got)
	}

	if _, err := NewFormatter("not a locale!"); err == nil {
		t.Error("invalid locale should fail")
	}
}

func TestFormatter_MonthLabel(t *testing.T) {
	march := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if got := DefaultFormatter().MonthLabel(march); got != "Mar 24" {
		t.Errorf("MonthLabel = %q, want %q", got, "Mar 24")
	}

	tests := []struct {
		locale string
		want   string
	}{
		{"en-US", "Mar 24"},
		{"de", "Mär 24"},
		{"de-DE", "Mär 24"},
	}
	for _, tt := range tests {
		f, err := NewFormatter(tt.locale)
		if err != nil {
			t.Fatalf("NewFormatter(%q) error = %v", tt.locale, err)
		}
		if got := f.MonthLabel(march); got != tt.want {
			t.Errorf("%s: MonthLabel = %q, want %q", tt.locale, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		inverse bool
		text    string
		tone    Tone
	}{
		{"zero normal", 0, false, "No change", ToneNeutral},
		{"zero inverse", 0, true, "No change", ToneNeutral},
		{"up normal", 2.5, false, "↑ 2.50", ToneFavorable},
		{"down normal", -2.5, false, "↓ 2.50", ToneUnfavorable},
		{"up inverse", 2.5, true, "↑ 2.50", ToneUnfavorable},
		{"down inverse", -2.5, true, "↓ 2.50", ToneFavorable},
		{"rounding", 0.126, false, "↑ 0.13", ToneFavorable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDelta(tt.v, tt.inverse)
			if got.Text != tt.text {
				t.Errorf("text = %q, want %q", got.Text, tt.text)
			}
			if got.Tone != tt.tone {
				t.Errorf("tone = %q, want %q", got.Tone, tt.tone)
			}
			if got.CSS != "change-val "+tt.tone.CSS() {
				t.Errorf("css = %q", got.CSS)
			}
		})
	}
}

func TestRenderDeltas(t *testing.T) {
	got := RenderDeltas(api.Deltas{
		DeltaRating:       0.2,
		DeltaNegSentiment: 0.05,
		DeltaResponseRate: -0.031,
	})

	if got.Rating.Text != "↑ 0.20" || got.Rating.Tone != ToneFavorable {
		t.Errorf("rating = %+v", got.Rating)
	}
	// More negative sentiment is bad news.
	if got.Sentiment.Text != "↑ 0.05" || got.Sentiment.Tone != ToneUnfavorable {
		t.Errorf("sentiment = %+v", got.Sentiment)
	}
	// Response rate is shown in percentage points.
	if got.ResponseRate.Text != "↓ 3.10" || got.ResponseRate.Tone != ToneUnfavorable {
		t.Errorf("response = %+v", got.ResponseRate)
	}
}

func TestSentimentColor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.15, ColorPositive},
		{-0.2, ColorNegative},
		{0.05, ColorNeutral},
		{0.1, ColorNeutral},
		{-0.1, ColorNeutral},
	}
	for _, tt := range tests {
		if got := SentimentColor(tt.score); got != tt.want {
			t.Errorf("SentimentColor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestMarkerRadius(t *testing.T) {
	if got := MarkerRadius(1); got != 5 {
		t.Errorf("MarkerRadius(1) = %v, want 5", got)
	}
	if got := MarkerRadius(int64(math.Round(math.Exp(5)))); math.Abs(got-20) > 0.05 {
		t.Errorf("MarkerRadius(e^5) = %v, want ~20", got)
	}
	if got := MarkerRadius(-1); !math.IsNaN(got) {
		t.Errorf("MarkerRadius(-1) = %v, want NaN", got)
	}
}

func TestNewMarker(t *testing.T) {
	m, err := NewMarker(api.GeoPoint{
		Name:              "Lekki <Phase 1>",
		Latitude:          6.44,
		Longitude:         3.47,
		ReviewCount:       50,
		NetSentimentScore: -0.25,
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Color != ColorNegative || m.FillColor != ColorNegative {
		t.Errorf("color = %q/%q", m.Color, m.FillColor)
	}
	if !strings.Contains(m.Popup, "&lt;Phase 1&gt;") {
		t.Errorf("popup name not escaped: %q", m.Popup)
	}
	if !strings.Contains(m.Popup, "Sentiment: -0.25") {
		t.Errorf("popup = %q", m.Popup)
	}

	if _, err := NewMarker(api.GeoPoint{Name: "empty", ReviewCount: 0}); err == nil {
		t.Error("review_count 0 should be rejected")
	}
}

func TestMarkerBounds(t *testing.T) {
	if _, ok := MarkerBounds(nil); ok {
		t.Error("empty marker set should have no bounds")
	}

	b, ok := MarkerBounds([]Marker{
		{Position: LatLng{Lat: 6.5, Lng: 3.3}},
		{Position: LatLng{Lat: 6.4, Lng: 3.5}},
		{Position: LatLng{Lat: 6.6, Lng: 3.4}},
	})
	if !ok {
		t.Fatal("expected bounds")
	}
	want := Bounds{SouthWest: LatLng{6.4, 3.3}, NorthEast: LatLng{6.6, 3.5}}
	if b != want {
		t.Errorf("bounds = %+v, want %+v", b, want)
	}
}
