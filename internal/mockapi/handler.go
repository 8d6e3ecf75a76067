package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
)

// ListLimit caps how many businesses /businesses returns.
const ListLimit = 10

// Handler serves the backend's read endpoints under /api.
type Handler struct {
	mu       sync.RWMutex
	fixtures *Fixtures
	mux      *http.ServeMux
	log      *zap.Logger
}

// NewHandler serves f.
func NewHandler(f *Fixtures, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{fixtures: f, mux: http.NewServeMux(), log: log}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /api/businesses", h.handleBusinesses)
	h.mux.HandleFunc("GET /api/business/{id}/overview", h.handleOverview)
	h.mux.HandleFunc("GET /api/business/{id}/rating-trend", h.handleRatingTrend)
	h.mux.HandleFunc("GET /api/business/{id}/sentiment-dist", h.handleSentimentDist)
	h.mux.HandleFunc("GET /api/business/{id}/deltas", h.handleDeltas)
	h.mux.HandleFunc("GET /api/business/{id}/benchmark", h.handleBenchmark)
	h.mux.HandleFunc("GET /api/geo/overview", h.handleGeoOverview)
	h.mux.HandleFunc("GET /api/geo/insight", h.handleGeoInsight)
}

// SetFixtures swaps the served data set.
func (h *Handler) SetFixtures(f *Fixtures) {
	h.mu.Lock()
	h.fixtures = f
	h.mu.Unlock()
}

// ServeHTTP allows any origin, as the dashboard page may live elsewhere.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "*")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) data() *Fixtures {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fixtures
}

// wireID writes numeric ids as JSON numbers.
func wireID(id api.ID) any {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return n
	}
	return string(id)
}

// business resolves the {id} path value. ok is false when a response was
// already written for a malformed id.
func (h *Handler) business(w http.ResponseWriter, r *http.Request) (*Business, bool) {
	raw := r.PathValue("id")
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "business_id must be an integer"})
		return nil, false
	}
	b, found := h.data().Find(api.ID(raw))
	if !found {
		return nil, true
	}
	return b, true
}

func (h *Handler) handleBusinesses(w http.ResponseWriter, r *http.Request) {
	bs := h.data().Businesses
	if len(bs) > ListLimit {
		bs = bs[:ListLimit]
	}
	out := make([]map[string]any, 0, len(bs))
	for _, b := range bs {
		out = append(out, map[string]any{"id": wireID(b.ID), "name": b.Name, "industry": b.Industry})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	b, ok := h.business(w, r)
	if !ok {
		return
	}
	if b == nil {
		notFound(w, "Business not found")
		return
	}
	bm := h.data().Benchmarks[b.Industry]
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                 wireID(b.ID),
		"name":               b.Name,
		"industry":           b.Industry,
		"location":           b.Location,
		"trust_score":        b.Overview.TrustScore,
		"total_reviews":      b.Overview.TotalReviews,
		"weighted_rating":    b.Overview.WeightedRating,
		"response_rate":      b.Overview.ResponseRate,
		"industry_avg_trust": b.Overview.IndustryAvgTrust,
		"industry_top_trust": bm.P90TrustScore,
	})
}

// Unknown businesses get an empty series, not a 404.
func (h *Handler) handleRatingTrend(w http.ResponseWriter, r *http.Request) {
	b, ok := h.business(w, r)
	if !ok {
		return
	}
	out := []map[string]any{}
	if b != nil {
		for _, p := range b.RatingTrend {
			out = append(out, map[string]any{
				"date":   p.Date.Format("2006-01-02T15:04:05"),
				"rating": p.Rating,
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleSentimentDist(w http.ResponseWriter, r *http.Request) {
	b, ok := h.business(w, r)
	if !ok {
		return
	}
	var d api.SentimentDist
	if b != nil {
		d = b.Sentiment
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleDeltas(w http.ResponseWriter, r *http.Request) {
	b, ok := h.business(w, r)
	if !ok {
		return
	}
	var d api.Deltas
	if b != nil {
		d = b.Deltas
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	b, ok := h.business(w, r)
	if !ok {
		return
	}
	if b == nil {
		notFound(w, "Benchmark not found")
		return
	}
	bm, found := h.data().Benchmarks[b.Industry]
	if !found {
		notFound(w, "Benchmark not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"industry":          b.Industry,
		"p50_trust_score":   bm.P50TrustScore,
		"p90_trust_score":   bm.P90TrustScore,
		"avg_response_rate": bm.AvgResponseRate,
	})
}

func (h *Handler) handleGeoOverview(w http.ResponseWriter, r *http.Request) {
	f := h.data()
	out := make([]map[string]any, 0, len(f.Businesses))
	for _, b := range f.Businesses {
		if b.Geo.ReviewCount < 1 {
			continue
		}
		out = append(out, map[string]any{
			"location_id":         wireID(b.ID),
			"name":                b.Geo.Name,
			"city":                b.Location,
			"latitude":            b.Geo.Latitude,
			"longitude":           b.Geo.Longitude,
			"review_count":        b.Geo.ReviewCount,
			"avg_rating":          b.Overview.WeightedRating,
			"net_sentiment_score": b.Geo.NetSentimentScore,
			"response_rate":       b.Overview.ResponseRate,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGeoInsight(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	insight := Insight(h.data().GeoPoints())
	h.log.Debug("computed geo insight", zap.Duration("elapsed", time.Since(start)))
	writeJSON(w, http.StatusOK, api.Insight{Insight: insight})
}

func notFound(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
