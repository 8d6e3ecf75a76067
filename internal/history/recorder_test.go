package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func event(panel Panel, outcome Outcome) Event {
	return Event{Timestamp: epoch, SessionID: "s1", BusinessID: "42", Token: 1, Panel: panel, Outcome: outcome}
}

func TestRecorder_Record(t *testing.T) {
	rec := New(nil, 0)

	if err := rec.Record(event(PanelOverview, OutcomeRendered)); err != nil {
		t.Fatal(err)
	}
	if rec.Len() != 1 {
		t.Errorf("Len() = %d, want 1", rec.Len())
	}
}

func TestRecorder_Events_ReturnsCopy(t *testing.T) {
	rec := New(nil, 0)
	rec.Record(event(PanelOverview, OutcomeRendered))

	events := rec.Events()
	events[0].BusinessID = "mutated"

	if rec.Events()[0].BusinessID != "42" {
		t.Error("Events() should return a copy, original was mutated")
	}
}

func TestRecorder_Limit(t *testing.T) {
	rec := New(nil, 2)
	rec.Record(event(PanelOverview, OutcomeRendered))
	rec.Record(event(PanelDeltas, OutcomeRendered))
	rec.Record(event(PanelBenchmark, OutcomeFailed))

	events := rec.Events()
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Panel != PanelDeltas || events[1].Panel != PanelBenchmark {
		t.Errorf("kept %s, %s; want deltas, benchmark", events[0].Panel, events[1].Panel)
	}
}

func TestRecorder_StreamToWriter(t *testing.T) {
	var buf bytes.Buffer
	rec := New(&buf, 0)

	rec.Record(event(PanelOverview, OutcomeRendered))
	rec.Record(event(PanelDeltas, OutcomeStale))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var ev Event
	json.Unmarshal(lines[1], &ev)
	if ev.Outcome != OutcomeStale {
		t.Errorf("second event outcome = %q, want stale", ev.Outcome)
	}
}

func TestRecorder_ExportAndLoad(t *testing.T) {
	rec := New(nil, 0)
	rec.Record(event(PanelOverview, OutcomeRendered))
	rec.Record(event(PanelMap, OutcomeFailed))

	path := filepath.Join(t.TempDir(), "history.json")
	if err := rec.ExportFile(path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	events, err := LoadJSON(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[1].Panel != PanelMap {
		t.Errorf("loaded %+v", events)
	}
}

func TestRecorder_ExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := New(nil, 0).ExportJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if got := bytes.TrimSpace(buf.Bytes()); string(got) != "[]" {
		t.Errorf("empty export = %s, want []", got)
	}
}

func TestRecorder_ConcurrentRecord(t *testing.T) {
	rec := New(nil, 0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Record(event(PanelOverview, OutcomeRendered))
		}()
	}
	wg.Wait()

	if rec.Len() != 50 {
		t.Errorf("Len() = %d, want 50", rec.Len())
	}
}
