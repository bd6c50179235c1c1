package catalog

import (
	"errors"
	"sync"
)

// ErrBusy is returned when the same action is triggered again before the
// previous attempt has resolved.
var ErrBusy = errors.New("action already in progress")

// inflight tracks which actions have an outstanding request.
type inflight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// begin marks key as running. It returns false when key already is.
func (g *inflight) begin(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		g.active = make(map[string]struct{})
	}
	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

func (g *inflight) end(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}

// busy reports whether key is running.
func (g *inflight) busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[key]
	return ok
}
