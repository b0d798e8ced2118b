package publisher

import (
	"context"
	"fmt"

	"github.com/QuangTung97/eventstore/handler"
	"github.com/QuangTung97/eventstore/model"
)

// Settings is the runtime configuration the publisher consults on every
// publish call
type Settings interface {
	EventHandlers() []handler.MessageHandler
	EventHandlersDisabled() bool
}

// PublishEventError wraps a handler failure during dispatch
type PublishEventError struct {
	EventHandlerName string
	Event            model.Event
	Cause            error
}

func (e *PublishEventError) Error() string {
	return fmt.Sprintf("publish event %q to handler %q: %v",
		e.Event.EventType, e.EventHandlerName, e.Cause)
}

// Unwrap ...
func (e *PublishEventError) Unwrap() error {
	return e.Cause
}

// Publisher dispatches committed events to all registered handlers in FIFO
// order per unit of execution. The queue and the reentrancy flag live in the
// context that flows through a commit and its handlers, so a handler that
// commits further events enqueues onto the frame already draining.
type Publisher struct {
	settings Settings
}

// New ...
func New(settings Settings) *Publisher {
	return &Publisher{
		settings: settings,
	}
}

type dispatchState struct {
	queue  []model.Event
	locked bool
}

type ctxDispatchKeyType struct{}

var ctxDispatchKey ctxDispatchKeyType

func getDispatchState(ctx context.Context) *dispatchState {
	st, _ := ctx.Value(ctxDispatchKey).(*dispatchState)
	return st
}

// WithDispatchState returns a context carrying a fresh dispatch state.
// PublishEvents installs one automatically when missing; this is for callers
// that want to scope the state explicitly.
func WithDispatchState(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxDispatchKey, &dispatchState{})
}

// PublishEvents enqueues events and drains the queue unless a shallower
// frame on the same context is already draining. Events enqueued by handlers
// mid-drain are dispatched after the events already queued, never before:
// the order is breadth-first across the commit tree.
//
// On the first handler error the rest of the queue is discarded and a
// *PublishEventError is returned. Stale events are never replayed by a later
// publish on the same context.
func (p *Publisher) PublishEvents(ctx context.Context, events []model.Event) error {
	if p.settings.EventHandlersDisabled() {
		return nil
	}

	st := getDispatchState(ctx)
	if st == nil {
		st = &dispatchState{}
		ctx = context.WithValue(ctx, ctxDispatchKey, st)
	}

	st.queue = append(st.queue, events...)
	if st.locked {
		return nil
	}

	st.locked = true
	defer func() {
		st.locked = false
	}()

	for len(st.queue) > 0 {
		event := st.queue[0]
		st.queue = st.queue[1:]

		for _, h := range p.settings.EventHandlers() {
			if err := h.HandleMessage(ctx, event); err != nil {
				st.queue = nil
				return &PublishEventError{
					EventHandlerName: h.Name(),
					Event:            event,
					Cause:            err,
				}
			}
		}
	}
	return nil
}
