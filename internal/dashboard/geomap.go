package dashboard

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
	"github.com/SmitUplenchwar2687/Vantage/internal/view"
)

// ErrMapNotReady is returned when geo data arrives before InitMap.
var ErrMapNotReady = errors.New("map is not initialized")

// MapState is the map's lifecycle stage.
type MapState string

const (
	MapUninitialized MapState = "uninitialized"
	MapReady         MapState = "ready"
	MapDrawn         MapState = "drawn"
)

// TileLayer describes the raster tiles the page loads.
type TileLayer struct {
	URL         string `json:"url" yaml:"url" toml:"url"`
	Attribution string `json:"attribution" yaml:"attribution" toml:"attribution"`
	Subdomains  string `json:"subdomains" yaml:"subdomains" toml:"subdomains"`
	MaxZoom     int    `json:"max_zoom" yaml:"max_zoom" toml:"max_zoom"`
}

// MapConfig is the initial map setup.
type MapConfig struct {
	Center  view.LatLng `json:"center"`
	Zoom    int         `json:"zoom"`
	Tiles   TileLayer   `json:"tiles"`
	Padding [2]int      `json:"padding"`
}

// DefaultMapConfig centers on Lagos with Carto light tiles.
func DefaultMapConfig() MapConfig {
	return MapConfig{
		Center: view.LatLng{Lat: 6.5, Lng: 3.35},
		Zoom:   11,
		Tiles: TileLayer{
			URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
			Subdomains:  "abcd",
			MaxZoom:     19,
		},
		Padding: [2]int{50, 50},
	}
}

// Viewport is what the page should show. When Bounds is set the page fits
// them with Padding; otherwise it uses Center and Zoom.
type Viewport struct {
	Center  view.LatLng  `json:"center"`
	Zoom    int          `json:"zoom"`
	Bounds  *view.Bounds `json:"bounds,omitempty"`
	Padding [2]int       `json:"padding"`
}

// MapView is the map's renderable state.
type MapView struct {
	State    MapState           `json:"state"`
	Viewport Viewport           `json:"viewport"`
	Tiles    TileLayer          `json:"tiles"`
	Legend   []view.LegendEntry `json:"legend"`
	Note     string             `json:"note"`
	Markers  []view.Marker      `json:"markers"`
	Insight  string             `json:"insight"`
}

// GeoMap owns the marker set of the geographic sentiment map.
type GeoMap struct {
	mu       sync.RWMutex
	cfg      MapConfig
	state    MapState
	viewport Viewport
	markers  []view.Marker
	insight  string
	log      *zap.Logger
}

// NewGeoMap creates an uninitialized map.
func NewGeoMap(cfg MapConfig, log *zap.Logger) *GeoMap {
	if log == nil {
		log = zap.NewNop()
	}
	return &GeoMap{cfg: cfg, state: MapUninitialized, log: log}
}

// InitMap sets the initial viewport. Calling it again is a no-op.
func (m *GeoMap) InitMap() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != MapUninitialized {
		return
	}
	m.viewport = Viewport{Center: m.cfg.Center, Zoom: m.cfg.Zoom, Padding: m.cfg.Padding}
	m.state = MapReady
}

// LoadGeoData replaces every marker with one per point and fits the
// viewport to them. Points with fewer than one review are skipped; the count
// of skipped points is returned. With no markers the viewport is unchanged.
func (m *GeoMap) LoadGeoData(points []api.GeoPoint, insight string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == MapUninitialized {
		return 0, ErrMapNotReady
	}

	m.markers = m.markers[:0]
	skipped := 0
	for _, p := range points {
		marker, err := view.NewMarker(p)
		if err != nil {
			m.log.Warn("skipping geo point", zap.Error(err))
			skipped++
			continue
		}
		m.markers = append(m.markers, marker)
	}
	m.insight = insight
	m.state = MapDrawn

	if b, ok := view.MarkerBounds(m.markers); ok {
		m.viewport.Bounds = &b
		m.viewport.Padding = m.cfg.Padding
	}
	return skipped, nil
}

// View returns a copy of the map state.
func (m *GeoMap) View() MapView {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vp := m.viewport
	if vp.Bounds != nil {
		b := *vp.Bounds
		vp.Bounds = &b
	}
	return MapView{
		State:    m.state,
		Viewport: vp,
		Tiles:    m.cfg.Tiles,
		Legend:   view.Legend(),
		Note:     "Size = Volume",
		Markers:  append([]view.Marker{}, m.markers...),
		Insight:  m.insight,
	}
}
