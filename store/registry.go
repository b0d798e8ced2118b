package store

import (
	"sync"

	"github.com/QuangTung97/eventstore/model"
)

// Factory produces an empty payload instance for deserialization
type Factory func() model.Message

// Registry maps event type names to payload factories. It is built at
// startup; Register may be called again to redefine a type.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry ...
func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{},
	}
}

// Register ...
func (r *Registry) Register(eventType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[eventType] = factory
}

// Resolve ...
func (r *Registry) Resolve(eventType string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[eventType]
	return factory, ok
}

func (r *Registry) snapshot() map[string]Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factories := make(map[string]Factory, len(r.factories))
	for t, f := range r.factories {
		factories[t] = f
	}
	return factories
}

// typeCache freezes a registry snapshot at first use. The cached mode trades
// visibility of re-registrations for lock-free lookups.
type typeCache struct {
	once     sync.Once
	registry *Registry
	cached   map[string]Factory
}

func newTypeCache(registry *Registry) *typeCache {
	return &typeCache{
		registry: registry,
	}
}

func (c *typeCache) resolve(eventType string, cached bool) (Factory, bool) {
	if !cached {
		return c.registry.Resolve(eventType)
	}
	c.once.Do(func() {
		c.cached = c.registry.snapshot()
	})
	factory, ok := c.cached[eventType]
	return factory, ok
}
