package handler

import (
	"context"
	"reflect"

	"github.com/QuangTung97/eventstore/model"
)

// Callback handles one dispatched event
type Callback func(ctx context.Context, event model.Event) error

//go:generate moq -rm -out handler_mocks.go . MessageHandler

// MessageHandler dispatches events to registered callbacks
type MessageHandler interface {
	Name() string
	HandleMessage(ctx context.Context, event model.Event) error
	HandlesMessage(msg model.Message) bool
}

// Handler maps concrete payload types to callbacks. Messages without a
// registered callback are skipped silently.
type Handler struct {
	name      string
	callbacks map[reflect.Type]Callback
}

var _ MessageHandler = &Handler{}

// Builder collects (payload type, callback) registrations
type Builder struct {
	name      string
	callbacks map[reflect.Type]Callback
}

// NewBuilder ...
func NewBuilder(name string) *Builder {
	return &Builder{
		name:      name,
		callbacks: map[reflect.Type]Callback{},
	}
}

// On registers callback for every prototype's concrete type. Pointer and
// value prototypes of the same struct register the same type.
func (b *Builder) On(callback Callback, prototypes ...model.Message) *Builder {
	for _, p := range prototypes {
		b.callbacks[messageType(p)] = callback
	}
	return b
}

// Build ...
func (b *Builder) Build() *Handler {
	callbacks := make(map[reflect.Type]Callback, len(b.callbacks))
	for t, cb := range b.callbacks {
		callbacks[t] = cb
	}
	return &Handler{
		name:      b.name,
		callbacks: callbacks,
	}
}

// Name ...
func (h *Handler) Name() string {
	return h.name
}

// HandleMessage invokes the callback registered for the event's payload
// type, if any
func (h *Handler) HandleMessage(ctx context.Context, event model.Event) error {
	cb, ok := h.callbacks[messageType(event.Data)]
	if !ok {
		return nil
	}
	return cb(ctx, event)
}

// HandlesMessage ...
func (h *Handler) HandlesMessage(msg model.Message) bool {
	_, ok := h.callbacks[messageType(msg)]
	return ok
}

func messageType(msg model.Message) reflect.Type {
	t := reflect.TypeOf(msg)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
