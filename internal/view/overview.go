package view

import (
	"fmt"
	"math"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
)

// Trust score buckets. Ties go to the higher bucket.
const (
	TrustGood    = "good"
	TrustAverage = "average"
	TrustPoor    = "poor"

	trustGoodMin    = 80
	trustAverageMin = 60
)

var trustCSS = map[string]string{
	TrustGood:    "trust-score-good",
	TrustAverage: "trust-score-avg",
	TrustPoor:    "trust-score-bad",
}

// TrustClass buckets a trust score.
func TrustClass(score float64) string {
	switch {
	case score >= trustGoodMin:
		return TrustGood
	case score >= trustAverageMin:
		return TrustAverage
	default:
		return TrustPoor
	}
}

// OverviewPanel is the display state of the overview cards.
type OverviewPanel struct {
	TrustScore   string `json:"trust_score"`
	TrustClass   string `json:"trust_class"`
	TrustCSS     string `json:"trust_css"`
	IndustryAvg  string `json:"industry_avg"`
	Rating       string `json:"rating"`
	Volume       string `json:"volume"`
	ResponseRate string `json:"response_rate"`
}

// RenderOverview fills the overview slots from a snapshot.
func RenderOverview(ov api.Overview, f *Formatter) OverviewPanel {
	class := TrustClass(ov.TrustScore)
	return OverviewPanel{
		TrustScore:   Number(ov.TrustScore),
		TrustClass:   class,
		TrustCSS:     "metric " + trustCSS[class],
		IndustryAvg:  fmt.Sprintf("Industry Avg: %d", int64(math.Round(ov.IndustryAvgTrust))),
		Rating:       Number(ov.WeightedRating),
		Volume:       f.Thousands(ov.TotalReviews),
		ResponseRate: Percent(ov.ResponseRate),
	}
}
