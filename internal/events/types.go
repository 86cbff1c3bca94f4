package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeCommandReceived uint32 = iota + 1
	TypeLEDChanged
	TypeStatusNotified
	TypeConnectionChanged
	TypeAdvertisingRestarted
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// CommandReceivedEvent is published for every non-empty characteristic write.
type CommandReceivedEvent struct {
	Command    string
	Recognized bool
	Timestamp  time.Time
}

// Type returns the event type identifier for CommandReceivedEvent.
func (e CommandReceivedEvent) Type() uint32 { return TypeCommandReceived }

// LEDChangedEvent is published after the output line has been driven.
type LEDChangedEvent struct {
	On        bool
	Timestamp time.Time
}

// Type returns the event type identifier for LEDChangedEvent.
func (e LEDChangedEvent) Type() uint32 { return TypeLEDChanged }

// StatusNotifiedEvent is published after a STATUS reply was written and notified.
type StatusNotifiedEvent struct {
	Payload   string
	Timestamp time.Time
}

// Type returns the event type identifier for StatusNotifiedEvent.
func (e StatusNotifiedEvent) Type() uint32 { return TypeStatusNotified }

// ConnectionChangedEvent is published on connect and disconnect callbacks.
type ConnectionChangedEvent struct {
	Connected bool
	Timestamp time.Time
}

// Type returns the event type identifier for ConnectionChangedEvent.
func (e ConnectionChangedEvent) Type() uint32 { return TypeConnectionChanged }

// AdvertisingRestartedEvent is published when the control loop re-issues
// the advertising start after a disconnect. Err is nil on success.
type AdvertisingRestartedEvent struct {
	Err       error
	Timestamp time.Time
}

// Type returns the event type identifier for AdvertisingRestartedEvent.
func (e AdvertisingRestartedEvent) Type() uint32 { return TypeAdvertisingRestarted }
