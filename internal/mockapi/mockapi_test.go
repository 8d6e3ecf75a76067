package mockapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
)

var refTime = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func startMock(t *testing.T, f *Fixtures) *api.Client {
	t.Helper()
	srv := httptest.NewServer(NewHandler(f, nil))
	t.Cleanup(srv.Close)
	return api.New(srv.URL + "/api")
}

func TestGenerateAt_Deterministic(t *testing.T) {
	a := GenerateAt(42, 20, refTime)
	b := GenerateAt(42, 20, refTime)

	if len(a.Businesses) != 20 {
		t.Fatalf("businesses = %d, want 20", len(a.Businesses))
	}
	for i := range a.Businesses {
		x, y := a.Businesses[i], b.Businesses[i]
		if x.Name != y.Name || x.Overview != y.Overview || x.Geo != y.Geo {
			t.Fatalf("business %d differs between runs with the same seed", i)
		}
	}
	if c := GenerateAt(43, 20, refTime); c.Businesses[0].Geo == a.Businesses[0].Geo {
		t.Error("different seeds produced the same first location")
	}
}

func TestGenerateAt_Aggregates(t *testing.T) {
	f := GenerateAt(7, 30, refTime)

	for _, b := range f.Businesses {
		ov := b.Overview
		if ov.TotalReviews < 5 || ov.TotalReviews > 100 {
			t.Errorf("%s: total reviews %d out of range", b.ID, ov.TotalReviews)
		}
		if ov.TrustScore < 0 || ov.TrustScore > 100 {
			t.Errorf("%s: trust score %v out of range", b.ID, ov.TrustScore)
		}
		if ov.WeightedRating < 1 || ov.WeightedRating > 5 {
			t.Errorf("%s: weighted rating %v out of range", b.ID, ov.WeightedRating)
		}
		if b.Latitude < latMin || b.Latitude > latMax || b.Longitude < lngMin || b.Longitude > lngMax {
			t.Errorf("%s: location %v,%v outside Lagos", b.ID, b.Latitude, b.Longitude)
		}
		if len(b.RatingTrend) == 0 {
			t.Errorf("%s: empty rating trend", b.ID)
		}
		for i := 1; i < len(b.RatingTrend); i++ {
			if !b.RatingTrend[i-1].Date.Before(b.RatingTrend[i].Date) {
				t.Errorf("%s: rating trend not ascending", b.ID)
			}
		}
		if _, ok := f.Benchmarks[b.Industry]; !ok {
			t.Errorf("%s: no benchmark for %s", b.ID, b.Industry)
		}
		if ov.IndustryAvgTrust != f.Benchmarks[b.Industry].P50TrustScore {
			t.Errorf("%s: industry avg %v != p50 %v", b.ID, ov.IndustryAvgTrust, f.Benchmarks[b.Industry].P50TrustScore)
		}
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		in   []float64
		q    float64
		want float64
	}{
		{nil, 0.5, 0},
		{[]float64{10}, 0.9, 10},
		{[]float64{30, 10, 20}, 0.5, 20},
		{[]float64{10, 20, 30, 40}, 0.5, 25},
		{[]float64{0, 100}, 0.9, 90},
	}
	for _, tt := range tests {
		if got := percentile(tt.in, tt.q); got != tt.want {
			t.Errorf("percentile(%v, %v) = %v, want %v", tt.in, tt.q, got, tt.want)
		}
	}
}

func TestInsight(t *testing.T) {
	point := func(reviews int64, sentiment float64) api.GeoPoint {
		return api.GeoPoint{ReviewCount: reviews, NetSentimentScore: sentiment}
	}
	tests := []struct {
		name   string
		points []api.GeoPoint
		want   string
	}{
		{"empty", nil, "Not enough data for insights."},
		{
			"busy locations happier",
			[]api.GeoPoint{point(100, 0.8), point(10, 0.1), point(5, 0.0), point(3, 0.1), point(1, 0.0)},
			"High-volume locations show consistently higher sentiment compared to lower-volume locations.",
		},
		{
			"busy locations unhappier",
			[]api.GeoPoint{point(100, -0.5), point(10, 0.3), point(5, 0.2), point(3, 0.4), point(1, 0.3)},
			"High-volume locations show consistently lower sentiment compared to lower-volume locations.",
		},
		{
			"consistent",
			[]api.GeoPoint{point(100, 0.3), point(10, 0.3), point(5, 0.3)},
			"Sentiment is consistent across both high and low volume locations.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Insight(tt.points); got != tt.want {
				t.Errorf("Insight() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandler_ServesClient(t *testing.T) {
	f := GenerateAt(1, 15, refTime)
	c := startMock(t, f)
	ctx := context.Background()

	businesses, err := c.Businesses(ctx)
	if err != nil {
		t.Fatalf("Businesses() error = %v", err)
	}
	if len(businesses) != ListLimit {
		t.Fatalf("businesses = %d, want %d", len(businesses), ListLimit)
	}
	id := businesses[0].ID
	if id != "1" {
		t.Errorf("first id = %q, want 1", id)
	}

	ov, err := c.Overview(ctx, id)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if ov != f.Businesses[0].Overview {
		t.Errorf("Overview() = %+v, want %+v", ov, f.Businesses[0].Overview)
	}

	trend, err := c.RatingTrend(ctx, id)
	if err != nil {
		t.Fatalf("RatingTrend() error = %v", err)
	}
	if len(trend) != len(f.Businesses[0].RatingTrend) || !trend[0].Date.Equal(f.Businesses[0].RatingTrend[0].Date) {
		t.Errorf("RatingTrend() = %+v", trend)
	}

	if _, err := c.Deltas(ctx, id); err != nil {
		t.Errorf("Deltas() error = %v", err)
	}
	if d, err := c.SentimentDist(ctx, id); err != nil || d != f.Businesses[0].Sentiment {
		t.Errorf("SentimentDist() = %+v, %v", d, err)
	}
	if b, err := c.Benchmark(ctx, id); err != nil || b != f.Benchmarks[f.Businesses[0].Industry] {
		t.Errorf("Benchmark() = %+v, %v", b, err)
	}

	points, err := c.GeoOverview(ctx)
	if err != nil {
		t.Fatalf("GeoOverview() error = %v", err)
	}
	if len(points) != 15 {
		t.Errorf("geo points = %d, want 15", len(points))
	}
	insight, err := c.GeoInsight(ctx)
	if err != nil || insight != Insight(f.GeoPoints()) {
		t.Errorf("GeoInsight() = %q, %v", insight, err)
	}
}

func TestHandler_UnknownBusiness(t *testing.T) {
	c := startMock(t, GenerateAt(1, 3, refTime))
	ctx := context.Background()

	_, err := c.Overview(ctx, "99")
	var netErr *api.NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode != http.StatusNotFound {
		t.Fatalf("Overview(99) error = %v, want 404 NetworkError", err)
	}
	if _, err := c.Benchmark(ctx, "99"); !errors.As(err, &netErr) || netErr.StatusCode != http.StatusNotFound {
		t.Errorf("Benchmark(99) error = %v, want 404", err)
	}

	trend, err := c.RatingTrend(ctx, "99")
	if err != nil || len(trend) != 0 {
		t.Errorf("RatingTrend(99) = %v, %v; want empty", trend, err)
	}

	_, err = c.Overview(ctx, "abc")
	if !errors.As(err, &netErr) || netErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Overview(abc) error = %v, want 422", err)
	}
}

func TestFixtures_SaveLoad(t *testing.T) {
	f := GenerateAt(5, 4, refTime)
	path := filepath.Join(t.TempDir(), "fixtures.json")
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Businesses) != 4 || got.Seed != 5 {
		t.Fatalf("loaded %d businesses, seed %d", len(got.Businesses), got.Seed)
	}
	if got.Businesses[2].ID != f.Businesses[2].ID || got.Businesses[2].Overview != f.Businesses[2].Overview {
		t.Errorf("business 2 = %+v", got.Businesses[2])
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadFile(missing) returned nil error")
	}
}
