package overlay

import (
	"net/url"
	"sync"
)

// Navigator is the page location the overlay state is mirrored into.
type Navigator interface {
	// Location returns a copy of the current URL.
	Location() *url.URL
	// Replace swaps the current entry without adding history or notifying listeners.
	Replace(u *url.URL)
	// Listen registers fn for location changes the page did not make itself:
	// push, back, forward and manual entry.
	Listen(fn func(*url.URL)) (cancel func())
}

// History is an in-memory session history.
type History struct {
	mu        sync.Mutex
	entries   []*url.URL
	index     int
	listeners map[uint64]func(*url.URL)
	nextID    uint64
}

// NewHistory starts a history at initial.
func NewHistory(initial *url.URL) *History {
	return &History{
		entries:   []*url.URL{cloneURL(initial)},
		listeners: make(map[uint64]func(*url.URL)),
	}
}

// ParseHistory starts a history at the parsed raw URL.
func ParseHistory(raw string) (*History, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return NewHistory(u), nil
}

func (h *History) Location() *url.URL {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneURL(h.entries[h.index])
}

func (h *History) Replace(u *url.URL) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = cloneURL(u)
}

// Push adds a new entry after the current one, dropping any forward entries.
func (h *History) Push(u *url.URL) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], cloneURL(u))
	h.index++
	h.mu.Unlock()
	h.notify()
}

// Back moves one entry back. It reports false at the first entry.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves one entry forward. It reports false at the last entry.
func (h *History) Forward() bool {
	return h.move(1)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	h.mu.Unlock()
	h.notify()
	return true
}

func (h *History) Listen(fn func(*url.URL)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// notify calls listeners outside the lock so they may read or replace the location.
func (h *History) notify() {
	h.mu.Lock()
	loc := h.entries[h.index]
	fns := make([]func(*url.URL), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(cloneURL(loc))
	}
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return &url.URL{Path: "/"}
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
