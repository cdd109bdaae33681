// Package navigation tracks the current route of the presentation layer so
// the HTTP adapter can decide whether a forced logout may redirect.
package navigation

import "sync"

// Known routes.
const (
	RouteLogin    = "/login"
	RouteHome     = "/home"
	RouteBooking  = "/booking"
	RouteCheckout = "/checkout"
)

// Navigator is implemented by whatever owns the route (a UI router, the CLI).
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// History is an in-memory Navigator that records every navigation.
type History struct {
	mu      sync.Mutex
	current string
	visited []string
}

// NewHistory starts at the given path.
func NewHistory(start string) *History {
	return &History{current: start}
}

func (h *History) CurrentPath() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = path
	h.visited = append(h.visited, path)
}

// Visited returns the navigations performed so far, oldest first.
func (h *History) Visited() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.visited))
	copy(out, h.visited)
	return out
}
