// Package api is a typed client for the reputation analytics backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxErrorBody caps how much of a non-2xx body is kept on a NetworkError.
const maxErrorBody = 512

// Client fetches JSON from the backend's fixed set of endpoints.
// It never retries and keeps no cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero means none. A client passed
// with WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client rooted at baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Businesses lists the selectable businesses in backend order.
func (c *Client) Businesses(ctx context.Context) ([]Business, error) {
	var out []Business
	if err := c.getJSON(ctx, "/businesses", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Overview fetches the scalar metrics for a business.
func (c *Client) Overview(ctx context.Context, id ID) (Overview, error) {
	path := businessPath(id, "overview")
	var w overviewWire
	if err := c.getJSON(ctx, path, &w); err != nil {
		return Overview{}, err
	}
	ov, err := w.convert()
	if err != nil {
		return Overview{}, &ParseError{Path: path, Err: err}
	}
	return ov, nil
}

// Deltas fetches period-over-period changes for a business.
func (c *Client) Deltas(ctx context.Context, id ID) (Deltas, error) {
	path := businessPath(id, "deltas")
	var w deltasWire
	if err := c.getJSON(ctx, path, &w); err != nil {
		return Deltas{}, err
	}
	d, err := w.convert()
	if err != nil {
		return Deltas{}, &ParseError{Path: path, Err: err}
	}
	return d, nil
}

// RatingTrend fetches the monthly rating series for a business.
func (c *Client) RatingTrend(ctx context.Context, id ID) ([]RatingPoint, error) {
	path := businessPath(id, "rating-trend")
	var ws []ratingPointWire
	if err := c.getJSON(ctx, path, &ws); err != nil {
		return nil, err
	}
	out := make([]RatingPoint, 0, len(ws))
	for i, w := range ws {
		p, err := w.convert()
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("point %d: %w", i, err)}
		}
		out = append(out, p)
	}
	return out, nil
}

// SentimentDist fetches review counts per sentiment bucket.
func (c *Client) SentimentDist(ctx context.Context, id ID) (SentimentDist, error) {
	var out SentimentDist
	if err := c.getJSON(ctx, businessPath(id, "sentiment-dist"), &out); err != nil {
		return SentimentDist{}, err
	}
	return out, nil
}

// Benchmark fetches the industry percentiles for a business.
func (c *Client) Benchmark(ctx context.Context, id ID) (Benchmark, error) {
	path := businessPath(id, "benchmark")
	var w benchmarkWire
	if err := c.getJSON(ctx, path, &w); err != nil {
		return Benchmark{}, err
	}
	b, err := w.convert()
	if err != nil {
		return Benchmark{}, &ParseError{Path: path, Err: err}
	}
	return b, nil
}

// GeoOverview fetches per-location sentiment aggregates.
func (c *Client) GeoOverview(ctx context.Context) ([]GeoPoint, error) {
	const path = "/geo/overview"
	var ws []geoPointWire
	if err := c.getJSON(ctx, path, &ws); err != nil {
		return nil, err
	}
	out := make([]GeoPoint, 0, len(ws))
	for i, w := range ws {
		p, err := w.convert()
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("point %d: %w", i, err)}
		}
		out = append(out, p)
	}
	return out, nil
}

// GeoInsight fetches the geo insight sentence.
func (c *Client) GeoInsight(ctx context.Context) (string, error) {
	const path = "/geo/insight"
	var w insightWire
	if err := c.getJSON(ctx, path, &w); err != nil {
		return "", err
	}
	if w.Insight == nil {
		return "", &ParseError{Path: path, Err: errors.New(`missing field "insight"`)}
	}
	return *w.Insight, nil
}

func businessPath(id ID, resource string) string {
	return "/business/" + url.PathEscape(string(id)) + "/" + resource
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &NetworkError{Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("backend request failed", zap.String("path", path), zap.Error(err))
		return &NetworkError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &NetworkError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response %q", strings.TrimSpace(string(body))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Path: path, Err: fmt.Errorf("reading body: %w", err)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}
