package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/QuangTung97/eventstore/model"
)

type firstEvent struct{}
type secondEvent struct{}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Resolve("MyEvent")
	assert.Equal(t, false, ok)

	r.Register("MyEvent", func() model.Message { return &firstEvent{} })

	factory, ok := r.Resolve("MyEvent")
	assert.Equal(t, true, ok)
	_, isFirst := factory().(*firstEvent)
	assert.Equal(t, true, isFirst)
}

func TestTypeCache_Uncached_Observes_Redefinition(t *testing.T) {
	r := NewRegistry()
	r.Register("MyEvent", func() model.Message { return &firstEvent{} })

	cache := newTypeCache(r)

	factory, ok := cache.resolve("MyEvent", false)
	assert.Equal(t, true, ok)
	_, isFirst := factory().(*firstEvent)
	assert.Equal(t, true, isFirst)

	// redefined between calls
	r.Register("MyEvent", func() model.Message { return &secondEvent{} })

	factory, ok = cache.resolve("MyEvent", false)
	assert.Equal(t, true, ok)
	_, isSecond := factory().(*secondEvent)
	assert.Equal(t, true, isSecond)
}

func TestTypeCache_Cached_Freezes_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Register("MyEvent", func() model.Message { return &firstEvent{} })

	cache := newTypeCache(r)

	factory, ok := cache.resolve("MyEvent", true)
	assert.Equal(t, true, ok)
	_, isFirst := factory().(*firstEvent)
	assert.Equal(t, true, isFirst)

	r.Register("MyEvent", func() model.Message { return &secondEvent{} })
	r.Register("OtherEvent", func() model.Message { return &secondEvent{} })

	// the frozen snapshot keeps serving the old definition
	factory, ok = cache.resolve("MyEvent", true)
	assert.Equal(t, true, ok)
	_, isFirst = factory().(*firstEvent)
	assert.Equal(t, true, isFirst)

	_, ok = cache.resolve("OtherEvent", true)
	assert.Equal(t, false, ok)
}
