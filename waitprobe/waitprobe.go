package waitprobe

import "sync"

// Event is one literal block-read timing observed by the probe.
type Event struct {
	CursorID     int64
	LocationID   string
	TimingMicros float64
}

// Feed supplies the probe events recorded for one cursor. An error or
// an empty result simply leaves the heuristic classification in place.
type Feed interface {
	Events(cursorID int64) ([]Event, error)
}

// Registry correlates backend processes with their active cursor so
// the external probe can label events. It is the only piece of state
// shared across sessions and is guarded accordingly.
type Registry struct {
	mu      sync.Mutex
	cursors map[int32]int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cursors: make(map[int32]int64)}
}

// Bind records pid's active cursor, replacing any previous binding.
func (r *Registry) Bind(pid int32, cursorID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursors[pid] = cursorID
}

// Unbind removes pid's binding, if any.
func (r *Registry) Unbind(pid int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cursors, pid)
}

// Lookup returns pid's active cursor.
func (r *Registry) Lookup(pid int32) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.cursors[pid]
	return id, ok
}
