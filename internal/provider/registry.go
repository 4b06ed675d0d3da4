package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the known adapters, keyed by provider ID.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[a.ID()]; exists {
		return fmt.Errorf("adapter with ID '%s' already registered", a.ID())
	}
	r.adapters[a.ID()] = a
	return nil
}

func (r *Registry) Get(id string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	return a, ok
}

func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	as := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		as = append(as, a)
	}

	sort.Slice(as, func(i, j int) bool {
		return as[i].ID() < as[j].ID()
	})

	return as
}
