package chart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SmitUplenchwar2687/Vantage/internal/storage"
)

// ErrStaleChart is returned when a chart from an older load reaches a canvas
// that already shows a newer one.
var ErrStaleChart = errors.New("chart is older than the live instance")

// Handle is the live instance bound to a canvas.
type Handle struct {
	Chart       Chart     `json:"chart"`
	InstalledAt time.Time `json:"installed_at"`
	Released    bool      `json:"released"`
}

// Registry owns exactly one live chart per canvas. Replace is the only
// writer: it is serialized, and the token check and release of the previous
// instance happen under the same lock. Chart bodies are kept in the storage
// backend so processes sharing it agree on the newest token.
type Registry struct {
	mu        sync.Mutex
	store     storage.Storage
	namespace string
	size      Size
	live      map[Canvas]*Handle
	releases  map[Canvas]int
	onRelease func(Handle)
	now       func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSize sets the render size.
func WithSize(s Size) RegistryOption {
	return func(r *Registry) { r.size = s }
}

// WithReleaseHook is called with every instance released by Replace or Clear.
func WithReleaseHook(fn func(Handle)) RegistryOption {
	return func(r *Registry) { r.onRelease = fn }
}

// NewRegistry creates a registry whose storage keys live under namespace.
func NewRegistry(store storage.Storage, namespace string, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:     store,
		namespace: namespace,
		size:      DefaultSize,
		live:      make(map[Canvas]*Handle),
		releases:  make(map[Canvas]int),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) key(c Canvas) string {
	return r.namespace + ":chart:" + string(c)
}

// Replace renders c and installs it as the live instance of its canvas,
// releasing the previous one. It returns ErrStaleChart and leaves the canvas
// untouched when c.Token is older than the live token.
func (r *Registry) Replace(ctx context.Context, c Chart) (Handle, error) {
	svg, err := RenderSVG(c, r.size)
	if err != nil {
		return Handle{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.live[c.Canvas]
	if prev != nil && prev.Chart.Token > c.Token {
		return Handle{}, ErrStaleChart
	}

	ok, err := r.store.SetIfNewer(ctx, r.key(c.Canvas), c.Token, svg)
	if err != nil {
		return Handle{}, fmt.Errorf("storing %s chart: %w", c.Canvas, err)
	}
	if !ok {
		return Handle{}, ErrStaleChart
	}

	if prev != nil {
		r.release(prev)
	}
	h := &Handle{Chart: c, InstalledAt: r.now()}
	r.live[c.Canvas] = h
	return *h, nil
}

func (r *Registry) release(h *Handle) {
	h.Released = true
	r.releases[h.Chart.Canvas]++
	if r.onRelease != nil {
		r.onRelease(*h)
	}
}

// Live returns the live instance of a canvas.
func (r *Registry) Live(c Canvas) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.live[c]
	if !ok {
		return Handle{}, false
	}
	return *h, true
}

// LiveCount returns how many canvases currently hold an instance.
func (r *Registry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Releases returns how many instances of a canvas have been released.
func (r *Registry) Releases(c Canvas) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.releases[c]
}

// SVG returns the stored body of a canvas' newest chart, or nil before the
// first render.
func (r *Registry) SVG(ctx context.Context, c Canvas) ([]byte, error) {
	body, _, err := r.store.GetVersioned(ctx, r.key(c))
	if err != nil {
		return nil, fmt.Errorf("loading %s chart: %w", c, err)
	}
	return body, nil
}

// Clear releases every live instance and drops the stored bodies.
func (r *Registry) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for c, h := range r.live {
		r.release(h)
		delete(r.live, c)
		if err := r.store.Delete(ctx, r.key(c)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
