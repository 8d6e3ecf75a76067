package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
	"github.com/SmitUplenchwar2687/Vantage/internal/chart"
	"github.com/SmitUplenchwar2687/Vantage/internal/config"
	"github.com/SmitUplenchwar2687/Vantage/internal/dashboard"
	"github.com/SmitUplenchwar2687/Vantage/internal/export"
	"github.com/SmitUplenchwar2687/Vantage/internal/history"
	"github.com/SmitUplenchwar2687/Vantage/internal/mockapi"
	"github.com/SmitUplenchwar2687/Vantage/internal/storage"
)

var epoch = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func startBackend(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(mockapi.NewHandler(mockapi.GenerateAt(1, 5, epoch), nil))
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNormalizeRedisHostPort(t *testing.T) {
	tests := []struct {
		host     string
		port     int
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"localhost", 6379, "localhost", 6379, false},
		{"redis.internal:6380", 6379, "redis.internal", 6380, false},
		{"localhost:abc", 6379, "", 0, true},
		{"", 6379, "", 0, true},
		{"localhost", 0, "", 0, true},
	}
	for _, tt := range tests {
		host, port, err := normalizeRedisHostPort(tt.host, tt.port)
		if tt.wantErr {
			if err == nil {
				t.Errorf("normalizeRedisHostPort(%q, %d) expected error", tt.host, tt.port)
			}
			continue
		}
		if err != nil {
			t.Fatalf("normalizeRedisHostPort(%q, %d) error = %v", tt.host, tt.port, err)
		}
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("normalizeRedisHostPort(%q, %d) = %s:%d, want %s:%d",
				tt.host, tt.port, host, port, tt.wantHost, tt.wantPort)
		}
	}
}

func TestStorageOptions_MemorySkipsNormalize(t *testing.T) {
	o := defaultStorageOptions()
	o.redisHost = "not:a:valid:host"
	if err := o.normalize(); err != nil {
		t.Fatalf("normalize() on memory backend error = %v", err)
	}
}

func TestDashboardOptions_ConfigThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vantage.yaml")
	cfgYAML := `api:
  base_url: http://backend:9000/api
  timeout: 3s
locale: fr-FR
storage:
  backend: redis
  redis:
    host: cache:6390
`
	if err := os.WriteFile(path, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := defaultDashboardOptions()
	cmd := &cobra.Command{Use: "test"}
	opts.addFlags(cmd)
	if err := cmd.Flags().Parse([]string{"--config", path, "--locale", "de-DE"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := opts.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if cfg.API.BaseURL != "http://backend:9000/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if cfg.Locale != "de-DE" {
		t.Errorf("Locale = %q, explicit flag should win", cfg.Locale)
	}
	if cfg.Storage.Backend != storage.BackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.Storage.Backend)
	}
	if cfg.Storage.Redis.Host != "cache" || cfg.Storage.Redis.Port != 6390 {
		t.Errorf("Redis = %s:%d, want cache:6390", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port)
	}
}

func TestSnapshotCmd_JSON(t *testing.T) {
	url := startBackend(t)
	out, err := runRoot(t, "snapshot", "--api-url", url, "--json", "--session-id", "cli", "--log-level", "error")
	if err != nil {
		t.Fatalf("snapshot error = %v", err)
	}

	var snap dashboard.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decoding snapshot: %v\n%s", err, out)
	}
	if snap.SessionID != "cli" {
		t.Errorf("SessionID = %q, want cli", snap.SessionID)
	}
	if snap.BusinessID != "1" {
		t.Errorf("BusinessID = %q, want 1", snap.BusinessID)
	}
	if len(snap.Businesses) != 5 {
		t.Errorf("len(Businesses) = %d, want 5", len(snap.Businesses))
	}
	if snap.Overview == nil || snap.Deltas == nil {
		t.Fatal("expected overview and deltas panels")
	}
	if len(snap.Charts) != len(chart.Canvases) {
		t.Errorf("len(Charts) = %d, want %d", len(snap.Charts), len(chart.Canvases))
	}
	if snap.Map.State != dashboard.MapDrawn {
		t.Errorf("Map.State = %q, want drawn", snap.Map.State)
	}
}

func TestSnapshotCmd_BusinessAndCharts(t *testing.T) {
	url := startBackend(t)
	dir := filepath.Join(t.TempDir(), "charts")

	out, err := runRoot(t, "snapshot", "--api-url", url, "--business", "3", "--charts-dir", dir, "--log-level", "error")
	if err != nil {
		t.Fatalf("snapshot error = %v", err)
	}
	for _, want := range []string{"Reputation Analytics", "Trust Score", "Geographic Sentiment", "5 locations"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, c := range chart.Canvases {
		body, err := os.ReadFile(filepath.Join(dir, string(c)+".svg"))
		if err != nil {
			t.Fatalf("reading %s chart: %v", c, err)
		}
		if !bytes.Contains(body, []byte("<svg")) {
			t.Errorf("%s chart is not an SVG", c)
		}
	}
}

func TestSnapshotCmd_BackendDown(t *testing.T) {
	srv := httptest.NewServer(mockapi.NewHandler(mockapi.GenerateAt(1, 5, epoch), nil))
	url := srv.URL + "/api"
	srv.Close()

	out, err := runRoot(t, "snapshot", "--api-url", url, "--log-level", "error")
	if err == nil {
		t.Fatal("expected error when the backend is unreachable")
	}
	if !strings.Contains(out, "Overview unavailable") {
		t.Errorf("output should mark the overview unavailable:\n%s", out)
	}
}

func TestRenderSnapshot_Empty(t *testing.T) {
	out := renderSnapshot(dashboard.Snapshot{Map: dashboard.MapView{State: dashboard.MapUninitialized}})
	for _, want := range []string{"Overview unavailable", "unavailable", "0 locations (uninitialized)"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderSnapshot() missing %q:\n%s", want, out)
		}
	}
}

func TestExportCmd(t *testing.T) {
	url := startBackend(t)
	path := filepath.Join(t.TempDir(), "dash.xlsx")

	out, err := runRoot(t, "export", "--api-url", url, "--output", path, "--business", "2", "--log-level", "error")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "Exported business 2") {
		t.Errorf("output = %q", out)
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	for _, want := range []string{export.SheetOverview, export.SheetBenchmark, export.SheetLocations} {
		found := false
		for _, s := range sheets {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("sheet %q missing from %v", want, sheets)
		}
	}
}

func TestSummarizeHistory(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []history.Event{
		{Timestamp: base, SessionID: "a", Panel: history.PanelBusinesses, Outcome: history.OutcomeRendered, Elapsed: 10 * time.Millisecond},
		{Timestamp: base.Add(time.Second), SessionID: "a", Token: 1, Panel: history.PanelOverview, Outcome: history.OutcomeStale, Elapsed: 30 * time.Millisecond},
		{Timestamp: base.Add(2 * time.Second), SessionID: "a", Token: 2, Panel: history.PanelOverview, Outcome: history.OutcomeRendered, Elapsed: 10 * time.Millisecond},
		{Timestamp: base.Add(3 * time.Second), SessionID: "b", Token: 1, Panel: history.PanelDeltas, Outcome: history.OutcomeFailed, Error: "boom"},
	}

	s := summarizeHistory(events, nil)
	if s.TotalEvents != 4 || s.Filtered != 0 {
		t.Errorf("TotalEvents=%d Filtered=%d", s.TotalEvents, s.Filtered)
	}
	if s.Sessions != 2 {
		t.Errorf("Sessions = %d, want 2", s.Sessions)
	}
	if s.Loads != 3 {
		t.Errorf("Loads = %d, want 3", s.Loads)
	}
	if s.Span != 3*time.Second {
		t.Errorf("Span = %v, want 3s", s.Span)
	}

	ov := s.PerPanel[history.PanelOverview]
	if ov == nil || ov.Rendered != 1 || ov.Stale != 1 {
		t.Fatalf("overview stats = %+v", ov)
	}
	if ov.AvgElapsed != 20*time.Millisecond || ov.MaxElapsed != 30*time.Millisecond {
		t.Errorf("overview elapsed avg=%v max=%v", ov.AvgElapsed, ov.MaxElapsed)
	}
	if d := s.PerPanel[history.PanelDeltas]; d == nil || d.Failed != 1 || d.LastError != "boom" {
		t.Errorf("deltas stats = %+v", d)
	}

	filtered := summarizeHistory(events, []string{"overview"})
	if filtered.Filtered != 2 || len(filtered.PerPanel) != 1 {
		t.Errorf("filtered: Filtered=%d panels=%d", filtered.Filtered, len(filtered.PerPanel))
	}
}

func TestHistoryCmd(t *testing.T) {
	rec := history.New(nil, 0)
	rec.Record(history.Event{Timestamp: epoch, SessionID: "s", Token: 1, Panel: history.PanelBenchmark, Outcome: history.OutcomeStale})
	path := filepath.Join(t.TempDir(), "history.json")
	if err := rec.ExportFile(path); err != nil {
		t.Fatal(err)
	}

	out, err := runRoot(t, "history", "--file", path)
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out, "benchmark") || !strings.Contains(out, "1 panel responses arrived after a newer selection") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := runRoot(t, "history"); err == nil {
		t.Error("expected error without --file")
	}
}

func TestGenerateFixturesCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.json")
	if _, err := runRoot(t, "generate", "fixtures", "--output", path, "--seed", "9", "--count", "12"); err != nil {
		t.Fatalf("generate fixtures error = %v", err)
	}

	f, err := mockapi.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(f.Businesses) != 12 {
		t.Errorf("len(Businesses) = %d, want 12", len(f.Businesses))
	}
	if _, ok := f.Find(api.ID("12")); !ok {
		t.Error("business 12 missing")
	}
}

func TestGenerateConfigCmd(t *testing.T) {
	for _, name := range []string{"vantage.yaml", "vantage.toml", "vantage.json"} {
		path := filepath.Join(t.TempDir(), name)
		if _, err := runRoot(t, "generate", "config", "--output", path); err != nil {
			t.Fatalf("generate config %s error = %v", name, err)
		}
		cfg, err := config.LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) error = %v", name, err)
		}
		if cfg.Server.Addr != config.Default().Server.Addr {
			t.Errorf("%s: Server.Addr = %q", name, cfg.Server.Addr)
		}
	}
}
