package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
	"github.com/SmitUplenchwar2687/Vantage/internal/chart"
	"github.com/SmitUplenchwar2687/Vantage/internal/history"
	"github.com/SmitUplenchwar2687/Vantage/internal/storage"
	"github.com/SmitUplenchwar2687/Vantage/internal/view"
)

// errStale marks a response that lost the race to a newer load.
var errStale = errors.New("stale response")

// Backend is the analytics API the session reads from.
type Backend interface {
	Businesses(ctx context.Context) ([]api.Business, error)
	Overview(ctx context.Context, id api.ID) (api.Overview, error)
	Deltas(ctx context.Context, id api.ID) (api.Deltas, error)
	RatingTrend(ctx context.Context, id api.ID) ([]api.RatingPoint, error)
	SentimentDist(ctx context.Context, id api.ID) (api.SentimentDist, error)
	Benchmark(ctx context.Context, id api.ID) (api.Benchmark, error)
	GeoOverview(ctx context.Context) ([]api.GeoPoint, error)
	GeoInsight(ctx context.Context) (string, error)
}

// Panel is a rendered section together with the data behind it.
type Panel[V, D any] struct {
	View       V         `json:"view"`
	Data       D         `json:"data"`
	BusinessID api.ID    `json:"business_id"`
	Token      int64     `json:"token"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot is a point-in-time copy of everything the dashboard shows.
type Snapshot struct {
	SessionID  string                                   `json:"session_id"`
	BusinessID api.ID                                   `json:"business_id"`
	Token      int64                                    `json:"token"`
	Businesses []Option                                 `json:"businesses"`
	Overview   *Panel[view.OverviewPanel, api.Overview] `json:"overview,omitempty"`
	Deltas     *Panel[view.DeltaPanel, api.Deltas]      `json:"deltas,omitempty"`
	Charts     map[chart.Canvas]chart.Chart             `json:"charts"`
	Map        MapView                                  `json:"map"`
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// WithFormatter sets the number and date formatter.
func WithFormatter(f *view.Formatter) SessionOption {
	return func(s *Session) { s.fmt = f }
}

// WithMapConfig sets the initial map setup.
func WithMapConfig(cfg MapConfig) SessionOption {
	return func(s *Session) { s.mapCfg = cfg }
}

// WithRecorder records every panel load.
func WithRecorder(r *history.Recorder) SessionOption {
	return func(s *Session) { s.rec = r }
}

// WithPublisher is called with every panel load event.
func WithPublisher(fn func(history.Event)) SessionOption {
	return func(s *Session) { s.publish = fn }
}

// WithChartOptions passes options to the chart registry.
func WithChartOptions(opts ...chart.RegistryOption) SessionOption {
	return func(s *Session) { s.chartOpts = append(s.chartOpts, opts...) }
}

// Session is one open dashboard. It replaces page-level globals: the
// selector, the chart registry, and the map all hang off it.
type Session struct {
	id        string
	backend   Backend
	store     storage.Storage
	fmt       *view.Formatter
	log       *zap.Logger
	rec       *history.Recorder
	publish   func(history.Event)
	mapCfg    MapConfig
	chartOpts []chart.RegistryOption
	now       func() time.Time

	selector *Selector
	charts   *chart.Registry
	geo      *GeoMap

	mu         sync.RWMutex
	businessID api.ID
	latest     int64
	overview   *Panel[view.OverviewPanel, api.Overview]
	deltas     *Panel[view.DeltaPanel, api.Deltas]
}

// NewSession wires a session to its backend and storage.
func NewSession(backend Backend, store storage.Storage, opts ...SessionOption) *Session {
	s := &Session{
		id:      uuid.NewString(),
		backend: backend,
		store:   store,
		mapCfg:  DefaultMapConfig(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.fmt == nil {
		s.fmt = view.DefaultFormatter()
	}
	s.log = s.log.With(zap.String("session", s.id))

	s.selector = NewSelector()
	s.charts = chart.NewRegistry(store, "session:"+s.id, s.chartOpts...)
	s.geo = NewGeoMap(s.mapCfg, s.log)
	s.selector.OnChange(func(ctx context.Context, id api.ID) error {
		_, err := s.Load(ctx, id)
		return err
	})
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Selector returns the business dropdown.
func (s *Session) Selector() *Selector { return s.selector }

// Charts returns the chart registry.
func (s *Session) Charts() *chart.Registry { return s.charts }

// Map returns the geographic map.
func (s *Session) Map() *GeoMap { return s.geo }

// Init populates the selector, loads the first business, and draws the map.
// Business list and map failures are logged and do not abort startup; the
// returned error only reports panels of the first load.
func (s *Session) Init(ctx context.Context) error {
	start := s.now()
	businesses, err := s.backend.Businesses(ctx)
	if err != nil {
		s.log.Error("error loading businesses", zap.Error(err))
		s.record(history.PanelBusinesses, "", 0, start, err)
	} else {
		s.selector.Populate(businesses)
		s.record(history.PanelBusinesses, "", 0, start, nil)
	}

	var loadErr error
	if first, ok := s.selector.First(); ok {
		_, loadErr = s.Load(ctx, first.ID)
	}

	s.geo.InitMap()
	if err := s.LoadGeo(ctx); err != nil {
		s.log.Error("error loading geo data", zap.Error(err))
	}
	return loadErr
}

// Select changes the dropdown to id and loads it.
func (s *Session) Select(ctx context.Context, id api.ID) error {
	return s.selector.Change(ctx, id)
}

func (s *Session) tokenKey() string {
	return "session:" + s.id + ":token"
}

// Load issues a new load token and fetches all five panels concurrently.
// Panels whose token is no longer the latest by the time their data
// arrives are discarded. Failing panels keep their previous content; their
// errors are joined in the result.
func (s *Session) Load(ctx context.Context, id api.ID) (int64, error) {
	token, err := s.store.Increment(ctx, s.tokenKey(), 1)
	if err != nil {
		return 0, fmt.Errorf("issuing load token: %w", err)
	}

	s.mu.Lock()
	if token > s.latest {
		s.latest = token
		s.businessID = id
	}
	s.mu.Unlock()

	s.log.Debug("loading business", zap.String("business", string(id)), zap.Int64("token", token))

	loads := []struct {
		panel history.Panel
		fn    func(context.Context, api.ID, int64) error
	}{
		{history.PanelOverview, s.loadOverview},
		{history.PanelDeltas, s.loadDeltas},
		{history.PanelRatingTrend, s.loadRatingTrend},
		{history.PanelSentimentDist, s.loadSentimentDist},
		{history.PanelBenchmark, s.loadBenchmark},
	}

	errs := make([]error, len(loads))
	var wg sync.WaitGroup
	for i, l := range loads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := s.now()
			err := l.fn(ctx, id, token)
			s.record(l.panel, id, token, start, err)
			if err != nil && !errors.Is(err, errStale) {
				s.log.Error("error loading panel",
					zap.String("panel", string(l.panel)),
					zap.String("business", string(id)),
					zap.Error(err))
				errs[i] = err
			}
		}()
	}
	wg.Wait()

	return token, errors.Join(errs...)
}

// commit applies a panel update only if token is still the latest.
func (s *Session) commit(token int64, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latest {
		return errStale
	}
	apply()
	return nil
}

func (s *Session) isLatest(token int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return token == s.latest
}

func (s *Session) loadOverview(ctx context.Context, id api.ID, token int64) error {
	ov, err := s.backend.Overview(ctx, id)
	if err != nil {
		return fmt.Errorf("overview: %w", err)
	}
	return s.commit(token, func() {
		s.overview = &Panel[view.OverviewPanel, api.Overview]{
			View:       view.RenderOverview(ov, s.fmt),
			Data:       ov,
			BusinessID: id,
			Token:      token,
			UpdatedAt:  s.now(),
		}
	})
}

func (s *Session) loadDeltas(ctx context.Context, id api.ID, token int64) error {
	d, err := s.backend.Deltas(ctx, id)
	if err != nil {
		return fmt.Errorf("deltas: %w", err)
	}
	return s.commit(token, func() {
		s.deltas = &Panel[view.DeltaPanel, api.Deltas]{
			View:       view.RenderDeltas(d),
			Data:       d,
			BusinessID: id,
			Token:      token,
			UpdatedAt:  s.now(),
		}
	})
}

func (s *Session) loadRatingTrend(ctx context.Context, id api.ID, token int64) error {
	points, err := s.backend.RatingTrend(ctx, id)
	if err != nil {
		return fmt.Errorf("rating trend: %w", err)
	}
	return s.installChart(ctx, chart.BuildRatingTrend(points, s.fmt), id, token)
}

func (s *Session) loadSentimentDist(ctx context.Context, id api.ID, token int64) error {
	d, err := s.backend.SentimentDist(ctx, id)
	if err != nil {
		return fmt.Errorf("sentiment distribution: %w", err)
	}
	return s.installChart(ctx, chart.BuildSentimentDist(d), id, token)
}

// loadBenchmark needs the business overview for the bars it compares.
func (s *Session) loadBenchmark(ctx context.Context, id api.ID, token int64) error {
	b, err := s.backend.Benchmark(ctx, id)
	if err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	ov, err := s.backend.Overview(ctx, id)
	if err != nil {
		return fmt.Errorf("benchmark overview: %w", err)
	}
	return s.installChart(ctx, chart.BuildBenchmark(b, ov), id, token)
}

func (s *Session) installChart(ctx context.Context, c chart.Chart, id api.ID, token int64) error {
	if !s.isLatest(token) {
		return errStale
	}
	c.BusinessID = id
	c.Token = token
	if _, err := s.charts.Replace(ctx, c); err != nil {
		if errors.Is(err, chart.ErrStaleChart) {
			return errStale
		}
		return err
	}
	return nil
}

// LoadGeo fetches the geo overview and insight and redraws the map. The map
// is only touched when both requests succeed.
func (s *Session) LoadGeo(ctx context.Context) error {
	start := s.now()
	err := s.loadGeo(ctx)
	s.record(history.PanelMap, "", 0, start, err)
	return err
}

func (s *Session) loadGeo(ctx context.Context) error {
	points, err := s.backend.GeoOverview(ctx)
	if err != nil {
		return fmt.Errorf("geo overview: %w", err)
	}
	insight, err := s.backend.GeoInsight(ctx)
	if err != nil {
		return fmt.Errorf("geo insight: %w", err)
	}
	skipped, err := s.geo.LoadGeoData(points, insight)
	if err != nil {
		return err
	}
	if skipped > 0 {
		s.log.Warn("skipped geo points without reviews", zap.Int("skipped", skipped))
	}
	return nil
}

func (s *Session) record(panel history.Panel, id api.ID, token int64, start time.Time, err error) {
	ev := history.Event{
		Timestamp:  start,
		SessionID:  s.id,
		BusinessID: string(id),
		Token:      token,
		Panel:      panel,
		Outcome:    history.OutcomeRendered,
		Elapsed:    s.now().Sub(start),
	}
	switch {
	case errors.Is(err, errStale):
		ev.Outcome = history.OutcomeStale
	case err != nil:
		ev.Outcome = history.OutcomeFailed
		ev.Error = err.Error()
	}

	if s.rec != nil {
		if rerr := s.rec.Record(ev); rerr != nil {
			s.log.Warn("recording panel event", zap.Error(rerr))
		}
	}
	if s.publish != nil {
		s.publish(ev)
	}
}

// Snapshot returns a copy of the current dashboard state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		SessionID:  s.id,
		BusinessID: s.businessID,
		Token:      s.latest,
	}
	if s.overview != nil {
		ov := *s.overview
		snap.Overview = &ov
	}
	if s.deltas != nil {
		d := *s.deltas
		snap.Deltas = &d
	}
	s.mu.RUnlock()

	snap.Businesses = s.selector.Options()
	snap.Charts = make(map[chart.Canvas]chart.Chart, len(chart.Canvases))
	for _, c := range chart.Canvases {
		if h, ok := s.charts.Live(c); ok {
			snap.Charts[c] = h.Chart
		}
	}
	snap.Map = s.geo.View()
	return snap
}

// Close releases every live chart.
func (s *Session) Close(ctx context.Context) error {
	return s.charts.Clear(ctx)
}
