// Package chart builds the dashboard's three charts from backend series,
// renders them to SVG and owns the single live instance per canvas.
package chart

import (
	"github.com/SmitUplenchwar2687/Vantage/internal/api"
	"github.com/SmitUplenchwar2687/Vantage/internal/view"
)

// Canvas names a chart target on the dashboard.
type Canvas string

const (
	CanvasRatingTrend   Canvas = "rating-trend"
	CanvasSentimentDist Canvas = "sentiment-dist"
	CanvasBenchmark     Canvas = "benchmark"
)

// Canvases lists every chart target in page order.
var Canvases = []Canvas{CanvasRatingTrend, CanvasSentimentDist, CanvasBenchmark}

// Kind is the chart type drawn on a canvas.
type Kind string

const (
	KindLine     Kind = "line"
	KindDoughnut Kind = "doughnut"
	KindBar      Kind = "bar"
)

// P90ResponseRatePct is the top-performer response-rate comparator.
// The backend's benchmark payload has no P90 response rate.
const P90ResponseRatePct = 95

// Scale is a fixed value axis.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Dataset is one named series. Colors holds one color per series, or one per
// point for doughnut slices.
type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"colors"`
}

// Chart is a renderable chart for one business on one canvas.
type Chart struct {
	Canvas     Canvas    `json:"canvas"`
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title"`
	Labels     []string  `json:"labels"`
	Datasets   []Dataset `json:"datasets"`
	Scale      *Scale    `json:"scale,omitempty"`
	BusinessID api.ID    `json:"business_id"`
	Token      int64     `json:"token"`
}

// Empty reports whether the chart has nothing to draw.
func (c Chart) Empty() bool {
	for _, ds := range c.Datasets {
		for _, v := range ds.Data {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// BuildRatingTrend maps monthly ratings onto a fixed 1-5 line chart.
func BuildRatingTrend(points []api.RatingPoint, f *view.Formatter) Chart {
	labels := make([]string, len(points))
	ratings := make([]float64, len(points))
	for i, p := range points {
		labels[i] = f.MonthLabel(p.Date)
		ratings[i] = p.Rating
	}
	return Chart{
		Canvas: CanvasRatingTrend,
		Kind:   KindLine,
		Title:  "Customer Rating Trend (Monthly)",
		Labels: labels,
		Datasets: []Dataset{{
			Label:  "Customer Rating Trend",
			Data:   ratings,
			Colors: []string{"#0f172a"},
		}},
		Scale: &Scale{Min: 1, Max: 5},
	}
}

// BuildSentimentDist maps bucket counts onto a three-slice doughnut.
func BuildSentimentDist(d api.SentimentDist) Chart {
	return Chart{
		Canvas: CanvasSentimentDist,
		Kind:   KindDoughnut,
		Title:  "Recent Sentiment (60d)",
		Labels: []string{"Positive", "Neutral", "Negative"},
		Datasets: []Dataset{{
			Data:   []float64{d.Positive, d.Neutral, d.Negative},
			Colors: []string{view.ColorPositive, "#cbd5e1", view.ColorNegative},
		}},
	}
}

// BuildBenchmark compares a business with its industry P50 and P90 peers on
// trust score and response rate.
func BuildBenchmark(b api.Benchmark, ov api.Overview) Chart {
	return Chart{
		Canvas: CanvasBenchmark,
		Kind:   KindBar,
		Title:  "Performance vs Industry",
		Labels: []string{"Trust Score", "Response Rate %"},
		Datasets: []Dataset{
			{Label: "This Business", Data: []float64{ov.TrustScore, ov.ResponseRate * 100}, Colors: []string{"#4338ca"}},
			{Label: "Industry Avg (P50)", Data: []float64{b.P50TrustScore, b.AvgResponseRate * 100}, Colors: []string{"#e2e8f0"}},
			{Label: "Top Performers (P90)", Data: []float64{b.P90TrustScore, P90ResponseRatePct}, Colors: []string{"#f1f5f9"}},
		},
		Scale: &Scale{Min: 0, Max: 100},
	}
}
