package testutil

import (
	"context"
	"sync"

	"github.com/alanyang/prompt-hub/internal/domain/event"
	porteventbus "github.com/alanyang/prompt-hub/internal/port/eventbus"
)

// EventRecorder is an EventBus test double that records every published event.
// It is safe for concurrent use. Subscribe is a no-op.
type EventRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

var _ porteventbus.EventBus = (*EventRecorder)(nil)

func (r *EventRecorder) Publish(_ context.Context, e event.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *EventRecorder) Subscribe(context.Context, event.Channel, porteventbus.Handler) (porteventbus.Subscription, error) {
	return noopSubscription{}, nil
}

// Types returns the recorded event types in publish order.
func (r *EventRecorder) Types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *EventRecorder) Last() (event.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return event.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}
