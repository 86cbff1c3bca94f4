// Package events carries controller state changes to in-process observers
// (metrics, logging sinks) without coupling them to the controller.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers. Delivery is asynchronous.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case CommandReceivedEvent:
		event.Publish(b.dispatcher, e)
	case LEDChangedEvent:
		event.Publish(b.dispatcher, e)
	case StatusNotifiedEvent:
		event.Publish(b.dispatcher, e)
	case ConnectionChangedEvent:
		event.Publish(b.dispatcher, e)
	case AdvertisingRestartedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type named by its parameter
// and returns an unsubscribe function. Unknown handler types get a no-op.
// Usage: unsub := bus.Subscribe(func(e LEDChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(CommandReceivedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LEDChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StatusNotifiedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ConnectionChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(AdvertisingRestartedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
