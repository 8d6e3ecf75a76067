package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
	"github.com/SmitUplenchwar2687/Vantage/internal/chart"
	"github.com/SmitUplenchwar2687/Vantage/internal/dashboard"
	"github.com/SmitUplenchwar2687/Vantage/internal/history"
)

// Server is the Vantage HTTP server that exposes one dashboard session.
type Server struct {
	httpServer *http.Server
	session    *dashboard.Session
	hub        *Hub
	rec        *history.Recorder
	log        *zap.Logger
	mux        *http.ServeMux
	started    time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithHub streams panel events to WebSocket clients on /ws.
func WithHub(h *Hub) Option {
	return func(s *Server) { s.hub = h }
}

// WithRecorder serves recorded panel events on /api/view/history.
func WithRecorder(r *history.Recorder) Option {
	return func(s *Server) { s.rec = r }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a new Vantage server.
func New(addr string, sess *dashboard.Session, opts ...Option) *Server {
	s := &Server{
		session: sess,
		mux:     http.NewServeMux(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           RequestLogger(s.mux, s.log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/dashboard/", s.handleDashboard)
	s.mux.HandleFunc("GET /api/view/businesses", s.handleBusinesses)
	s.mux.HandleFunc("POST /api/view/select/{id}", s.handleSelect)
	s.mux.HandleFunc("GET /api/view/state", s.handleState)
	s.mux.HandleFunc("GET /api/view/map", s.handleMap)
	s.mux.HandleFunc("GET /api/view/history", s.handleHistory)
	s.mux.HandleFunc("GET /charts/{file}", s.handleChart)
	if s.hub != nil {
		s.mux.HandleFunc("/ws", s.hub.HandleWebSocket)
	}
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleRoot serves a welcome message.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "vantage",
		"status":  "running",
		"session": s.session.ID(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(DashboardHTML))
}

func (s *Server) handleBusinesses(w http.ResponseWriter, r *http.Request) {
	sel := s.session.Selector()
	writeJSON(w, http.StatusOK, map[string]any{
		"businesses": nonNil(sel.Options()),
		"selected":   sel.Selected(),
	})
}

// handleSelect changes the selected business and loads its panels.
// Path: /api/view/select/{id}
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := api.ID(r.PathValue("id"))
	err := s.session.Select(r.Context(), id)
	switch {
	case errors.Is(err, dashboard.ErrUnknownBusiness):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":    err.Error(),
			"snapshot": s.session.Snapshot(),
		})
	default:
		writeJSON(w, http.StatusOK, s.session.Snapshot())
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Map().View())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	events := []history.Event{}
	if s.rec != nil {
		events = s.rec.Events()
	}
	writeJSON(w, http.StatusOK, events)
}

// handleChart serves the live SVG of a canvas.
// Path: /charts/{canvas}.svg
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok || !knownCanvas(chart.Canvas(name)) {
		http.NotFound(w, r)
		return
	}
	body, err := s.session.Charts().SVG(r.Context(), chart.Canvas(name))
	if err != nil {
		s.log.Error("loading chart", zap.String("canvas", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if body == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(body)
}

func knownCanvas(c chart.Canvas) bool {
	for _, k := range chart.Canvases {
		if k == c {
			return true
		}
	}
	return false
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Start begins listening. It blocks until the server is shut down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.StartOnListener(ln)
}

// StartOnListener begins serving on the provided listener.
// Useful for tests that need to pick an ephemeral port.
func (s *Server) StartOnListener(ln net.Listener) error {
	s.log.Info("vantage server listening", zap.String("addr", ln.Addr().String()))
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.CloseAll()
	}
	return s.httpServer.Shutdown(ctx)
}
