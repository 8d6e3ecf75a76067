package view

import (
	"fmt"
	"html"
	"math"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
)

// Sentiment colors shared by map markers, the legend and the donut chart.
const (
	ColorPositive = "#10b981"
	ColorNeutral  = "#9ca3af"
	ColorNegative = "#ef4444"

	sentimentThreshold = 0.1
	minMarkerRadius    = 5
	markerRadiusScale  = 4
)

// SentimentColor buckets a net sentiment score into three colors.
func SentimentColor(score float64) string {
	switch {
	case score > sentimentThreshold:
		return ColorPositive
	case score < -sentimentThreshold:
		return ColorNegative
	default:
		return ColorNeutral
	}
}

// MarkerRadius sizes a marker by log review volume with a visible minimum.
// reviewCount must be at least 1; smaller values give a non-finite radius.
func MarkerRadius(reviewCount int64) float64 {
	return math.Max(minMarkerRadius, markerRadiusScale*math.Log(float64(reviewCount)))
}

// LatLng is a map coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a lat/lng bounding box.
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
}

// Extend grows b to include p.
func (b Bounds) Extend(p LatLng) Bounds {
	b.SouthWest.Lat = math.Min(b.SouthWest.Lat, p.Lat)
	b.SouthWest.Lng = math.Min(b.SouthWest.Lng, p.Lng)
	b.NorthEast.Lat = math.Max(b.NorthEast.Lat, p.Lat)
	b.NorthEast.Lng = math.Max(b.NorthEast.Lng, p.Lng)
	return b
}

// Marker is one circle marker on the map.
type Marker struct {
	Position    LatLng  `json:"position"`
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	FillColor   string  `json:"fill_color"`
	FillOpacity float64 `json:"fill_opacity"`
	Weight      int     `json:"weight"`
	Popup       string  `json:"popup"`
}

// NewMarker builds the marker for a geo point.
func NewMarker(p api.GeoPoint) (Marker, error) {
	if p.ReviewCount < 1 {
		return Marker{}, fmt.Errorf("%s: review_count %d is below 1", p.Name, p.ReviewCount)
	}
	color := SentimentColor(p.NetSentimentScore)
	return Marker{
		Position:    LatLng{Lat: p.Latitude, Lng: p.Longitude},
		Radius:      MarkerRadius(p.ReviewCount),
		Color:       color,
		FillColor:   color,
		FillOpacity: 0.7,
		Weight:      1,
		Popup: fmt.Sprintf("<b>%s</b><br>Reviews: %d<br>Sentiment: %.2f",
			html.EscapeString(p.Name), p.ReviewCount, p.NetSentimentScore),
	}, nil
}

// MarkerBounds returns the bounding box of markers, or false when empty.
func MarkerBounds(markers []Marker) (Bounds, bool) {
	if len(markers) == 0 {
		return Bounds{}, false
	}
	first := markers[0].Position
	b := Bounds{SouthWest: first, NorthEast: first}
	for _, m := range markers[1:] {
		b = b.Extend(m.Position)
	}
	return b, true
}

// LegendEntry is one swatch of the map legend.
type LegendEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Legend lists the map's sentiment swatches.
func Legend() []LegendEntry {
	return []LegendEntry{
		{Color: ColorNegative, Label: "Negative Sentiment"},
		{Color: ColorNeutral, Label: "Neutral"},
		{Color: ColorPositive, Label: "Positive Sentiment"},
	}
}
