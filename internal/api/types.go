package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a business identifier. The backend emits integer ids; the dashboard
// treats them as opaque strings.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("business id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Business identifies a selectable entity.
type Business struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

// Overview is the scalar metric snapshot for one business.
type Overview struct {
	TrustScore       float64 `json:"trust_score"`
	IndustryAvgTrust float64 `json:"industry_avg_trust"`
	WeightedRating   float64 `json:"weighted_rating"`
	TotalReviews     int64   `json:"total_reviews"`
	ResponseRate     float64 `json:"response_rate"`
}

// Deltas holds period-over-period changes. Response rate is a fraction.
type Deltas struct {
	DeltaRating       float64 `json:"delta_rating"`
	DeltaNegSentiment float64 `json:"delta_neg_sentiment"`
	DeltaResponseRate float64 `json:"delta_response_rate"`
}

// RatingPoint is one monthly rating.
type RatingPoint struct {
	Date   time.Time `json:"date"`
	Rating float64   `json:"rating"`
}

// SentimentDist counts reviews per sentiment bucket. Missing buckets are 0.
type SentimentDist struct {
	Positive float64 `json:"Positive"`
	Neutral  float64 `json:"Neutral"`
	Negative float64 `json:"Negative"`
}

// Benchmark holds industry peer percentiles.
type Benchmark struct {
	P50TrustScore   float64 `json:"p50_trust_score"`
	P90TrustScore   float64 `json:"p90_trust_score"`
	AvgResponseRate float64 `json:"avg_response_rate"`
}

// GeoPoint is the sentiment aggregate of one geographic unit.
type GeoPoint struct {
	Name              string  `json:"name"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	ReviewCount       int64   `json:"review_count"`
	NetSentimentScore float64 `json:"net_sentiment_score"`
}

// Insight is the geo insight sentence.
type Insight struct {
	Insight string `json:"insight"`
}

// Wire shapes. Pointer fields mark what the backend must send.

type overviewWire struct {
	TrustScore       *float64 `json:"trust_score"`
	IndustryAvgTrust *float64 `json:"industry_avg_trust"`
	WeightedRating   *float64 `json:"weighted_rating"`
	TotalReviews     *float64 `json:"total_reviews"`
	ResponseRate     *float64 `json:"response_rate"`
}

func (w overviewWire) convert() (Overview, error) {
	if err := required(map[string]bool{
		"trust_score":        w.TrustScore != nil,
		"industry_avg_trust": w.IndustryAvgTrust != nil,
		"weighted_rating":    w.WeightedRating != nil,
		"total_reviews":      w.TotalReviews != nil,
		"response_rate":      w.ResponseRate != nil,
	}); err != nil {
		return Overview{}, err
	}
	return Overview{
		TrustScore:       *w.TrustScore,
		IndustryAvgTrust: *w.IndustryAvgTrust,
		WeightedRating:   *w.WeightedRating,
		TotalReviews:     int64(*w.TotalReviews),
		ResponseRate:     *w.ResponseRate,
	}, nil
}

type deltasWire struct {
	DeltaRating       *float64 `json:"delta_rating"`
	DeltaNegSentiment *float64 `json:"delta_neg_sentiment"`
	DeltaResponseRate *float64 `json:"delta_response_rate"`
}

func (w deltasWire) convert() (Deltas, error) {
	if err := required(map[string]bool{
		"delta_rating":        w.DeltaRating != nil,
		"delta_neg_sentiment": w.DeltaNegSentiment != nil,
		"delta_response_rate": w.DeltaResponseRate != nil,
	}); err != nil {
		return Deltas{}, err
	}
	return Deltas{
		DeltaRating:       *w.DeltaRating,
		DeltaNegSentiment: *w.DeltaNegSentiment,
		DeltaResponseRate: *w.DeltaResponseRate,
	}, nil
}

type ratingPointWire struct {
	Date   *string  `json:"date"`
	Rating *float64 `json:"rating"`
}

func (w ratingPointWire) convert() (RatingPoint, error) {
	if err := required(map[string]bool{
		"date":   w.Date != nil,
		"rating": w.Rating != nil,
	}); err != nil {
		return RatingPoint{}, err
	}
	d, err := ParseDate(*w.Date)
	if err != nil {
		return RatingPoint{}, err
	}
	return RatingPoint{Date: d, Rating: *w.Rating}, nil
}

type benchmarkWire struct {
	P50TrustScore   *float64 `json:"p50_trust_score"`
	P90TrustScore   *float64 `json:"p90_trust_score"`
	AvgResponseRate *float64 `json:"avg_response_rate"`
}

func (w benchmarkWire) convert() (Benchmark, error) {
	if err := required(map[string]bool{
		"p50_trust_score":   w.P50TrustScore != nil,
		"p90_trust_score":   w.P90TrustScore != nil,
		"avg_response_rate": w.AvgResponseRate != nil,
	}); err != nil {
		return Benchmark{}, err
	}
	return Benchmark{
		P50TrustScore:   *w.P50TrustScore,
		P90TrustScore:   *w.P90TrustScore,
		AvgResponseRate: *w.AvgResponseRate,
	}, nil
}

type geoPointWire struct {
	Name              *string  `json:"name"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	ReviewCount       *float64 `json:"review_count"`
	NetSentimentScore *float64 `json:"net_sentiment_score"`
}

func (w geoPointWire) convert() (GeoPoint, error) {
	if err := required(map[string]bool{
		"name":                w.Name != nil,
		"latitude":            w.Latitude != nil,
		"longitude":           w.Longitude != nil,
		"review_count":        w.ReviewCount != nil,
		"net_sentiment_score": w.NetSentimentScore != nil,
	}); err != nil {
		return GeoPoint{}, err
	}
	return GeoPoint{
		Name:              *w.Name,
		Latitude:          *w.Latitude,
		Longitude:         *w.Longitude,
		ReviewCount:       int64(*w.ReviewCount),
		NetSentimentScore: *w.NetSentimentScore,
	}, nil
}

type insightWire struct {
	Insight *string `json:"insight"`
}

// required returns an error naming the first missing field in sorted order.
func required(present map[string]bool) error {
	var missing string
	for name, ok := range present {
		if !ok && (missing == "" || name < missing) {
			missing = name
		}
	}
	if missing != "" {
		return fmt.Errorf("missing field %q", missing)
	}
	return nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
}

// ParseDate parses the ISO dates the backend emits.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %s", strconv.Quote(s))
}
