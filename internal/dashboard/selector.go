package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SmitUplenchwar2687/Vantage/internal/api"
)

// ErrUnknownBusiness is returned when a selection names no known option.
var ErrUnknownBusiness = errors.New("unknown business")

// Option is one entry of the business dropdown.
type Option struct {
	ID       api.ID `json:"id"`
	Label    string `json:"label"`
	Industry string `json:"industry"`
}

// ChangeHandler is invoked with the newly chosen business id.
type ChangeHandler func(ctx context.Context, id api.ID) error

// Selector is the business dropdown.
type Selector struct {
	mu       sync.RWMutex
	options  []Option
	selected api.ID
	handlers []ChangeHandler
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Populate appends one option per business in input order.
func (s *Selector) Populate(businesses []api.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range businesses {
		s.options = append(s.options, Option{
			ID:       b.ID,
			Label:    fmt.Sprintf("%s (%s)", b.Name, b.Industry),
			Industry: b.Industry,
		})
	}
	if s.selected == "" && len(s.options) > 0 {
		s.selected = s.options[0].ID
	}
}

// OnChange registers a handler for selection changes.
func (s *Selector) OnChange(h ChangeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// Change selects id and runs every handler in registration order.
func (s *Selector) Change(ctx context.Context, id api.ID) error {
	s.mu.Lock()
	if !s.hasLocked(id) {
		s.mu.Unlock()
		return fmt.Errorf("%w %q", ErrUnknownBusiness, id)
	}
	s.selected = id
	handlers := append([]ChangeHandler(nil), s.handlers...)
	s.mu.Unlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Selector) hasLocked(id api.ID) bool {
	for _, o := range s.options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Options returns a copy of the options.
func (s *Selector) Options() []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Option(nil), s.options...)
}

// Selected returns the selected business id, empty when there are no options.
func (s *Selector) Selected() api.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// First returns the first option.
func (s *Selector) First() (Option, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.options) == 0 {
		return Option{}, false
	}
	return s.options[0], true
}
