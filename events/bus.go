package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler receives the payload contracted for the event it subscribed to.
type Handler func(payload interface{})

// Handle identifies a subscription. Go functions are not comparable, so
// unsubscription goes through the handle returned at registration.
type Handle int

type subscription struct {
	handle  Handle
	handler Handler
}

// Bus is a synchronous publish/subscribe register. Handlers for an event run
// in registration order; a panicking handler is recovered and logged without
// aborting dispatch to the handlers after it.
type Bus struct {
	mu   sync.Mutex
	subs map[Event][]subscription
	next Handle
	log  logrus.FieldLogger
}

func NewBus(log logrus.FieldLogger) *Bus {
	return &Bus{
		subs: map[Event][]subscription{},
		log:  log,
	}
}

// Subscribe registers handler for event and returns its handle.
func (b *Bus) Subscribe(event Event, handler Handler) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.subs[event] = append(b.subs[event], subscription{handle: b.next, handler: handler})
	return b.next
}

// Unsubscribe removes the subscription identified by handle. Removing a
// handle that is not registered for event is a no-op.
func (b *Bus) Unsubscribe(event Event, handle Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[event]
	for i, s := range subs {
		if s.handle == handle {
			b.subs[event] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers payload to every handler currently registered for event,
// synchronously and in registration order.
func (b *Bus) Publish(event Event, payload interface{}) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[event]))
	copy(subs, b.subs[event])
	b.mu.Unlock()

	for _, s := range subs {
		b.dispatch(event, s, payload)
	}
}

func (b *Bus) dispatch(event Event, s subscription, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{
				"event":  event,
				"handle": s.handle,
				"panic":  r,
			}).Error("event handler panicked")
		}
	}()
	s.handler(payload)
}
