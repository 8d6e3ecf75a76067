package view

import (
	"math"
	"strconv"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
)

// Tone classifies a delta as good, bad or neither for the viewer.
type Tone string

const (
	ToneNeutral     Tone = "neutral"
	ToneFavorable   Tone = "favorable"
	ToneUnfavorable Tone = "unfavorable"
)

// CSS returns the class used by the dashboard page.
func (t Tone) CSS() string {
	switch t {
	case ToneFavorable:
		return "positive-change"
	case ToneUnfavorable:
		return "negative-change"
	default:
		return "neutral-change"
	}
}

const noChange = "No change"

// Delta is one formatted period-over-period change.
type Delta struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
	CSS  string `json:"css"`
}

// FormatDelta formats v. With inverse set, an increase is unfavorable.
func FormatDelta(v float64, inverse bool) Delta {
	if v == 0 {
		return Delta{Text: noChange, Tone: ToneNeutral, CSS: "change-val " + ToneNeutral.CSS()}
	}

	arrow := "↑"
	if v < 0 {
		arrow = "↓"
	}

	tone := ToneFavorable
	if (v > 0) == inverse {
		tone = ToneUnfavorable
	}

	return Delta{
		Text: arrow + " " + strconv.FormatFloat(math.Abs(v), 'f', 2, 64),
		Tone: tone,
		CSS:  "change-val " + tone.CSS(),
	}
}

// DeltaPanel holds the three delta slots.
type DeltaPanel struct {
	Rating       Delta `json:"rating"`
	Sentiment    Delta `json:"sentiment"`
	ResponseRate Delta `json:"response"`
}

// RenderDeltas formats the delta snapshot. Negative sentiment share is an
// inverse metric; the response-rate fraction is shown in percentage points.
func RenderDeltas(d api.Deltas) DeltaPanel {
	return DeltaPanel{
		Rating:       FormatDelta(d.DeltaRating, false),
		Sentiment:    FormatDelta(d.DeltaNegSentiment, true),
		ResponseRate: FormatDelta(d.DeltaResponseRate*100, false),
	}
}
