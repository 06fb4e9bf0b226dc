package memory

import (
	"context"
	"sync"

	"github.com/alanyang/prompt-hub/internal/domain/event"
	porteventbus "github.com/alanyang/prompt-hub/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

// EventBus delivers events in-process. Each subscription owns one goroutine
// fed by a buffered channel, so Publish never runs handlers inline.
type EventBus struct {
	mu   sync.RWMutex
	subs map[event.Channel]map[*subscription]struct{}
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[event.Channel]map[*subscription]struct{})}
}

const subscriptionBuffer = 64

func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)

	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for sub := range eb.subs[ch] {
		select {
		case sub.events <- e:
		case <-sub.ctx.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		ctx:    subCtx,
		events: make(chan event.Event, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	sub.cancel = func() {
		cancel()
		eb.mu.Lock()
		delete(eb.subs[ch], sub)
		eb.mu.Unlock()
	}

	eb.mu.Lock()
	if eb.subs[ch] == nil {
		eb.subs[ch] = make(map[*subscription]struct{})
	}
	eb.subs[ch][sub] = struct{}{}
	eb.mu.Unlock()

	go func() {
		defer close(sub.done)
		for {
			select {
			case <-subCtx.Done():
				return
			case e := <-sub.events:
				handler(subCtx, e)
			}
		}
	}()

	return sub, nil
}

type subscription struct {
	ctx    context.Context
	cancel func()
	events chan event.Event
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
