package history

import "time"

// Panel names a dashboard section that loads independently.
type Panel string

const (
	PanelBusinesses    Panel = "businesses"
	PanelOverview      Panel = "overview"
	PanelDeltas        Panel = "deltas"
	PanelRatingTrend   Panel = "rating-trend"
	PanelSentimentDist Panel = "sentiment-dist"
	PanelBenchmark     Panel = "benchmark"
	PanelMap           Panel = "map"
)

// Outcome is what happened to a panel load.
type Outcome string

const (
	OutcomeRendered Outcome = "rendered"
	OutcomeStale    Outcome = "stale"
	OutcomeFailed   Outcome = "failed"
)

// Event records one panel load. It is also the message streamed to the
// dashboard page.
type Event struct {
	Timestamp  time.Time     `json:"timestamp"`
	SessionID  string        `json:"session_id"`
	BusinessID string        `json:"business_id,omitempty"`
	Token      int64         `json:"token"`
	Panel      Panel         `json:"panel"`
	Outcome    Outcome       `json:"outcome"`
	Elapsed    time.Duration `json:"elapsed"`
	Error      string        `json:"error,omitempty"`
}
