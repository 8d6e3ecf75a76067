// Package mockapi is a stand-in for the reputation analytics backend. It
// serves the eight read endpoints from a generated or file-backed fixture set.
package mockapi

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
)

// Business is one fixture business with every aggregate the backend serves.
type Business struct {
	api.Business
	Location    string            `json:"location"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Overview    api.Overview      `json:"overview"`
	Deltas      api.Deltas        `json:"deltas"`
	RatingTrend []api.RatingPoint `json:"rating_trend"`
	Sentiment   api.SentimentDist `json:"sentiment"`
	Geo         api.GeoPoint      `json:"geo"`
}

// Fixtures is the full data set behind the mock backend.
type Fixtures struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Seed        int64                    `json:"seed"`
	Businesses  []Business               `json:"businesses"`
	Benchmarks  map[string]api.Benchmark `json:"benchmarks"`
}

// Find returns the business with id.
func (f *Fixtures) Find(id api.ID) (*Business, bool) {
	for i := range f.Businesses {
		if f.Businesses[i].ID == id {
			return &f.Businesses[i], true
		}
	}
	return nil, false
}

// GeoPoints returns one point per business that has reviews.
func (f *Fixtures) GeoPoints() []api.GeoPoint {
	out := make([]api.GeoPoint, 0, len(f.Businesses))
	for _, b := range f.Businesses {
		if b.Geo.ReviewCount > 0 {
			out = append(out, b.Geo)
		}
	}
	return out
}

// Save writes the fixtures as indented JSON.
func (f *Fixtures) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding fixtures: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing fixtures: %w", err)
	}
	return nil
}

// LoadFile reads fixtures written by Save.
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	var f Fixtures
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	if f.Benchmarks == nil {
		f.Benchmarks = map[string]api.Benchmark{}
	}
	return &f, nil
}

var industries = []string{"Restaurant", "Retail", "Service", "Hospitality", "Automotive"}

var (
	namePrefixes = []string{"Eko", "Lagoon", "Harbor", "Sunrise", "Unity", "Crown", "Palm", "Atlantic", "Zenith", "Marina", "Gold", "Bright"}
	nameSuffixes = []string{"Kitchen", "Motors", "Mart", "Suites", "Services", "Grill", "Traders", "Lounge", "Works", "Outfitters"}
	locations    = []string{"Ikeja", "Yaba", "Surulere", "Lekki", "Victoria Island", "Ikoyi", "Ajah", "Apapa", "Maryland", "Gbagada"}
)

// Lagos-area bounding box for generated locations.
const (
	latMin, latMax = 6.40, 6.70
	lngMin, lngMax = 3.20, 3.50
)

// ratingWeights are the odds of 5..1 stars per quality profile.
var ratingWeights = map[string][5]int{
	"excellent": {60, 30, 5, 3, 2},
	"good":      {30, 40, 15, 10, 5},
	"average":   {10, 20, 40, 20, 10},
	"poor":      {5, 10, 20, 35, 30},
}

var profiles = []string{"excellent", "good", "average", "poor"}

type review struct {
	rating    int
	sentiment float64
	createdAt time.Time
	responded bool
}

// Generate builds n synthetic businesses from seed, with a year of reviews
// ending now.
func Generate(seed int64, n int) *Fixtures {
	return GenerateAt(seed, n, time.Now().UTC())
}

// GenerateAt is Generate with an explicit reference time.
func GenerateAt(seed int64, n int, now time.Time) *Fixtures {
	rng := rand.New(rand.NewSource(seed))
	f := &Fixtures{
		GeneratedAt: now,
		Seed:        seed,
		Businesses:  make([]Business, 0, n),
		Benchmarks:  map[string]api.Benchmark{},
	}

	allReviews := make([][]review, 0, n)
	for i := 1; i <= n; i++ {
		b := Business{
			Business: api.Business{
				ID:       api.ID(fmt.Sprint(i)),
				Name:     namePrefixes[rng.Intn(len(namePrefixes))] + " " + nameSuffixes[rng.Intn(len(nameSuffixes))],
				Industry: industries[rng.Intn(len(industries))],
			},
			Location:  locations[rng.Intn(len(locations))],
			Latitude:  latMin + rng.Float64()*(latMax-latMin),
			Longitude: lngMin + rng.Float64()*(lngMax-lngMin),
		}
		reviews := generateReviews(rng, now)
		aggregate(&b, reviews, now)
		f.Businesses = append(f.Businesses, b)
		allReviews = append(allReviews, reviews)
	}

	byIndustry := map[string][]int{}
	for i, b := range f.Businesses {
		byIndustry[b.Industry] = append(byIndustry[b.Industry], i)
	}
	for industry, idx := range byIndustry {
		trust := make([]float64, 0, len(idx))
		var responded, total int
		for _, i := range idx {
			trust = append(trust, f.Businesses[i].Overview.TrustScore)
			for _, r := range allReviews[i] {
				total++
				if r.responded {
					responded++
				}
			}
		}
		bm := api.Benchmark{
			P50TrustScore: percentile(trust, 0.5),
			P90TrustScore: percentile(trust, 0.9),
		}
		if total > 0 {
			bm.AvgResponseRate = float64(responded) / float64(total)
		}
		f.Benchmarks[industry] = bm
		for _, i := range idx {
			f.Businesses[i].Overview.IndustryAvgTrust = bm.P50TrustScore
		}
	}
	return f
}

func generateReviews(rng *rand.Rand, now time.Time) []review {
	profile := profiles[rng.Intn(len(profiles))]
	weights := ratingWeights[profile]
	count := 5 + rng.Intn(96)
	start := now.AddDate(-1, 0, 0)
	span := now.Sub(start)

	out := make([]review, 0, count)
	for range count {
		r := review{
			rating:    pickRating(rng, weights),
			createdAt: start.Add(time.Duration(rng.Int63n(int64(span)))),
		}
		switch {
		case r.rating >= 4:
			r.sentiment = 0.3 + rng.Float64()*0.6
		case r.rating <= 2:
			r.sentiment = -0.9 + rng.Float64()*0.8
		default:
			r.sentiment = -0.2 + rng.Float64()*0.4
		}
		if rng.Float64() > 0.4 {
			respondedAt := r.createdAt.Add(time.Duration(1+rng.Intn(72)) * time.Hour)
			r.responded = respondedAt.Before(now)
		}
		out = append(out, r)
	}
	return out
}

func pickRating(rng *rand.Rand, weights [5]int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return 5 - i
		}
		n -= w
	}
	return 1
}

// Bayesian prior for the weighted rating.
const (
	priorReviews = 10
	priorRating  = 3.5
)

func aggregate(b *Business, reviews []review, now time.Time) {
	var ratingSum, sentimentSum float64
	var responded int
	months := map[time.Time][]float64{}
	for _, r := range reviews {
		ratingSum += float64(r.rating)
		sentimentSum += r.sentiment
		if r.responded {
			responded++
		}
		m := time.Date(r.createdAt.Year(), r.createdAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		months[m] = append(months[m], float64(r.rating))
	}

	n := float64(len(reviews))
	avg := ratingSum / n
	weighted := (n/(n+priorReviews))*avg + (priorReviews/(n+priorReviews))*priorRating
	responseRate := float64(responded) / n

	b.Overview = api.Overview{
		TrustScore:     round2(math.Min(100, weighted/5*70+responseRate*30)),
		WeightedRating: round2(weighted),
		TotalReviews:   int64(len(reviews)),
		ResponseRate:   round2(responseRate),
	}

	keys := make([]time.Time, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	b.RatingTrend = make([]api.RatingPoint, 0, len(keys))
	for _, m := range keys {
		b.RatingTrend = append(b.RatingTrend, api.RatingPoint{Date: m, Rating: round2(mean(months[m]))})
	}

	cutoff := now.AddDate(0, 0, -60)
	for _, r := range reviews {
		if r.createdAt.Before(cutoff) {
			continue
		}
		switch {
		case r.sentiment > 0.2:
			b.Sentiment.Positive++
		case r.sentiment < -0.2:
			b.Sentiment.Negative++
		default:
			b.Sentiment.Neutral++
		}
	}

	b.Deltas = periodDeltas(reviews, now)
	b.Geo = api.GeoPoint{
		Name:              b.Name,
		Latitude:          b.Latitude,
		Longitude:         b.Longitude,
		ReviewCount:       int64(len(reviews)),
		NetSentimentScore: round2(sentimentSum / n),
	}
}

type periodStats struct {
	ratings   []float64
	negative  int
	responded int
}

func (p periodStats) values() (rating, negRate, responseRate float64) {
	if len(p.ratings) == 0 {
		return 0, 0, 0
	}
	n := float64(len(p.ratings))
	return mean(p.ratings), float64(p.negative) / n, float64(p.responded) / n
}

// periodDeltas compares the last 30 days with the 30 before them. An empty
// period counts as zero.
func periodDeltas(reviews []review, now time.Time) api.Deltas {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	currentStart := today.AddDate(0, 0, -30)
	previousStart := today.AddDate(0, 0, -60)

	var current, previous periodStats
	for _, r := range reviews {
		var p *periodStats
		switch {
		case !r.createdAt.Before(currentStart):
			p = &current
		case !r.createdAt.Before(previousStart):
			p = &previous
		default:
			continue
		}
		p.ratings = append(p.ratings, float64(r.rating))
		if r.sentiment < -0.2 {
			p.negative++
		}
		if r.responded {
			p.responded++
		}
	}

	cr, cn, cresp := current.values()
	pr, pn, presp := previous.values()
	return api.Deltas{
		DeltaRating:       round2(cr - pr),
		DeltaNegSentiment: round2(cn - pn),
		DeltaResponseRate: round2(cresp - presp),
	}
}

// Insight compares the sentiment of the busiest fifth of locations with the
// quieter half.
func Insight(points []api.GeoPoint) string {
	if len(points) == 0 {
		return "Not enough data for insights."
	}
	sorted := append([]api.GeoPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ReviewCount > sorted[j].ReviewCount })

	n := len(sorted)
	top := max(1, n/5)
	bottom := max(1, n/2)

	diff := meanSentiment(sorted[:top]) - meanSentiment(sorted[n-bottom:])
	switch {
	case diff < -0.1:
		return "High-volume locations show consistently lower sentiment compared to lower-volume locations."
	case diff > 0.1:
		return "High-volume locations show consistently higher sentiment compared to lower-volume locations."
	default:
		return "Sentiment is consistent across both high and low volume locations."
	}
}

func meanSentiment(points []api.GeoPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.NetSentimentScore
	}
	return sum / float64(len(points))
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// percentile interpolates linearly between closest ranks.
func percentile(vs []float64, q float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	s := append([]float64(nil), vs...)
	sort.Float64s(s)
	pos := q * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return round2(s[lo] + (s[hi]-s[lo])*(pos-float64(lo)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
