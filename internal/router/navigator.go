package router

import (
	"slices"
	"sync"
)

// NavigateOptions controls how a navigation is recorded.
type NavigateOptions struct {
	// Replace swaps the current history entry instead of pushing a new one,
	// so going back skips the page that was left.
	Replace bool

	// Reason is a short note for listeners, e.g. "session expired".
	Reason string
}

// Navigation is one recorded move.
type Navigation struct {
	From    string
	To      string
	Replace bool
	Reason  string
}

// Navigator moves the client between routes.
type Navigator interface {
	Navigate(path string, opts NavigateOptions)
	Current() string
}

// History is an in-process Navigator with a back stack. Listeners are called
// synchronously after each navigation.
type History struct {
	mu        sync.Mutex
	entries   []string
	log       []Navigation
	listeners []func(Navigation)
}

// NewHistory starts a history at path.
func NewHistory(path string) *History {
	if path == "" {
		path = PathHome
	}
	return &History{entries: []string{path}}
}

// OnNavigate registers a listener.
func (h *History) OnNavigate(fn func(Navigation)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

func (h *History) Navigate(path string, opts NavigateOptions) {
	h.mu.Lock()
	nav := Navigation{
		From:    h.entries[len(h.entries)-1],
		To:      path,
		Replace: opts.Replace,
		Reason:  opts.Reason,
	}
	if opts.Replace {
		h.entries[len(h.entries)-1] = path
	} else {
		h.entries = append(h.entries, path)
	}
	h.log = append(h.log, nav)
	listeners := slices.Clone(h.listeners)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(nav)
	}
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

// Back pops the current entry. It reports false at the start of history.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 1 {
		return h.entries[0], false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Log returns every navigation so far.
func (h *History) Log() []Navigation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Navigation(nil), h.log...)
}

// Count returns how many navigations targeted path.
func (h *History) Count(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, nav := range h.log {
		if nav.To == path {
			n++
		}
	}
	return n
}
