// Package eventstore wires the event store, the event publisher and the
// handler registry behind a process-wide configuration value.
package eventstore

import (
	"sync/atomic"

	"github.com/QuangTung97/eventstore/handler"
	"github.com/QuangTung97/eventstore/repository"
	"github.com/QuangTung97/eventstore/store"
)

// Config is the process-wide runtime configuration. Values are immutable
// once published; Configure builds a new value and swaps the reference.
type Config struct {
	EventStore          *store.Store
	AggregateRepository *repository.AggregateRepository
	TypeRegistry        *store.Registry

	// EventHandlers is ordered; reconfiguring with a new list replaces it
	// entirely
	EventHandlers []handler.MessageHandler

	DisableEventHandlers      bool
	EventStoreCacheEventTypes bool
}

var current atomic.Pointer[Config]

func init() {
	Reset()
}

// Current returns the active configuration
func Current() *Config {
	return current.Load()
}

// Configure publishes a new configuration derived from the current one.
// When the registry changes without an explicitly injected store, the store
// is rebuilt around the new registry.
func Configure(fn func(c *Config)) {
	prev := current.Load()

	c := &Config{}
	if prev != nil {
		*c = *prev
	}
	fn(c)

	if c.TypeRegistry == nil {
		c.TypeRegistry = store.NewRegistry()
	}
	if c.AggregateRepository == nil {
		c.AggregateRepository = repository.NewAggregateRepository()
	}
	if c.EventStore == nil ||
		(prev != nil && c.EventStore == prev.EventStore && c.TypeRegistry != prev.TypeRegistry) {
		c.EventStore = store.New(c.TypeRegistry, globalSettings{})
	}

	current.Store(c)
}

// Reset replaces the configuration with the defaults
func Reset() {
	registry := store.NewRegistry()
	current.Store(&Config{
		EventStore:                store.New(registry, globalSettings{}),
		AggregateRepository:       repository.NewAggregateRepository(),
		TypeRegistry:              registry,
		EventStoreCacheEventTypes: true,
	})
}

// Restore reinstates a configuration previously taken from Current. Tests
// snapshot the reference, mutate freely, restore on teardown.
func Restore(conf *Config) {
	current.Store(conf)
}

// globalSettings adapts the current configuration to the store and
// publisher settings interfaces, so handler registration and toggles take
// effect without rebuilding the store.
type globalSettings struct{}

var _ store.Settings = globalSettings{}

func (globalSettings) EventHandlers() []handler.MessageHandler {
	return Current().EventHandlers
}

func (globalSettings) EventHandlersDisabled() bool {
	return Current().DisableEventHandlers
}

func (globalSettings) CacheEventTypes() bool {
	return Current().EventStoreCacheEventTypes
}
