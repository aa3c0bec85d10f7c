package realtime

import (
	"errors"
	"sync"
)

var ErrAlreadyActive = errors.New("subscription already active")

// Registry tracks live subscription handles by topic. A second live handle
// for the same topic would deliver every push twice, so it is refused.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

func (r *Registry) Register(h *Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[h.topic]; ok {
		return ErrAlreadyActive
	}
	r.handles[h.topic] = h
	return nil
}

func (r *Registry) Unregister(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.handles[h.topic]; ok && current == h {
		delete(r.handles, h.topic)
	}
}

func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
