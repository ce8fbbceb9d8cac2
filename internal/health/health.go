// Package health tracks liveness of the engine's dependencies. The
// server registers one checker per subsystem (database, alert feed)
// and the health endpoint reports the aggregate plus per-subsystem
// detail for operators.
package health

import (
	"context"
	"sync"
)

// Status is the outcome of checking a single subsystem.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Checker inspects one subsystem. It must honor the context deadline the
// health endpoint imposes.
type Checker func(ctx context.Context) Status

// Registry holds named checkers and runs them on demand.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

type entry struct {
	name  string
	check Checker
}

// NewRegistry creates an empty registry. A registry with no checkers
// reports healthy; in-memory deployments have no dependencies to watch.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named checker. Registration order is report order.
func (r *Registry) Register(name string, check Checker) {
	r.mu.Lock()
	r.entries = append(r.entries, entry{name: name, check: check})
	r.mu.Unlock()
}

// CheckAll runs every registered checker. The aggregate is healthy
// only when every subsystem is.
func (r *Registry) CheckAll(ctx context.Context) (healthy bool, statuses []Status) {
	r.mu.RLock()
	entries := make([]entry, len(r.entries))
	copy(entries, r.entries)
	r.mu.RUnlock()

	healthy = true
	statuses = make([]Status, len(entries))

	for i, e := range entries {
		statuses[i] = e.check(ctx)
		if !statuses[i].Healthy {
			healthy = false
		}
	}

	return healthy, statuses
}
