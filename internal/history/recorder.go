package history

import (
	"encoding/json"
	"io"
	"os"
	"sync"
)

// Recorder captures panel events.
// Thread-safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	limit  int
	writer io.Writer // optional: stream events as they arrive
}

// New creates a new Recorder. If w is non-nil, events are also
// written to w as newline-delimited JSON as they arrive. limit caps how many
// events are kept in memory (oldest dropped first); 0 keeps everything.
func New(w io.Writer, limit int) *Recorder {
	return &Recorder{
		writer: w,
		limit:  limit,
	}
}

// Record captures a single event.
func (r *Recorder) Record(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = append([]Event(nil), r.events[len(r.events)-r.limit:]...)
	}

	if r.writer != nil {
		if err := json.NewEncoder(r.writer).Encode(ev); err != nil {
			return err
		}
	}
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// ExportJSON writes all events to the given writer as a JSON array.
func (r *Recorder) ExportJSON(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if r.events == nil {
		return enc.Encode([]Event{})
	}
	return enc.Encode(r.events)
}

// ExportFile writes all events to a file as a JSON array.
func (r *Recorder) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.ExportJSON(f)
}

// LoadJSON reads events from a JSON array.
func LoadJSON(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}
