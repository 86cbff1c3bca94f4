// Package control implements the LED control state machine: it owns the LED
// state and the link state, reacts to characteristic writes and connection
// callbacks, and runs the loop that restarts advertising after a disconnect.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chaz8081/bleled/internal/events"
	"github.com/chaz8081/bleled/internal/led"
)

// Notifier stores a new characteristic value and pushes it to subscribed
// clients. *bluetooth.Characteristic satisfies it.
type Notifier interface {
	Write(p []byte) (n int, err error)
}

// Advertiser (re)starts BLE advertising.
type Advertiser interface {
	Start() error
}

// Options configures the controller.
type Options struct {
	SettleDelay  time.Duration // wait after a disconnect before re-advertising
	PollInterval time.Duration // control loop cadence
	Logger       *slog.Logger
	Bus          *events.Bus // optional
}

// DefaultOptions returns the stock timings: 500ms settle, 10ms poll.
func DefaultOptions() Options {
	return Options{
		SettleDelay:  500 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	}
}

// Controller owns the LED and connection state. Its methods are safe to call
// from BLE callback goroutines while Run is active.
type Controller struct {
	out  led.Output
	opts Options
	log  *slog.Logger

	mu            sync.Mutex
	ledOn         bool
	connected     bool
	prevConnected bool
	notifier      Notifier
	advertiser    Advertiser
}

// New creates a controller driving out. The LED starts off and the link
// starts disconnected.
func New(out led.Output, opts Options) *Controller {
	def := DefaultOptions()
	if opts.SettleDelay < 0 {
		opts.SettleDelay = def.SettleDelay
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		out:  out,
		opts: opts,
		log:  logger,
	}
}

// Init drives the output low so the hardware matches the initial state.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.out.Set(false); err != nil {
		return fmt.Errorf("control: init output: %w", err)
	}
	c.ledOn = false
	return nil
}

// SetNotifier sets the characteristic used for STATUS replies.
func (c *Controller) SetNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = n
}

// SetAdvertiser sets the advertiser restarted after a disconnect.
func (c *Controller) SetAdvertiser(a Advertiser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advertiser = a
}

// LEDOn reports the logical LED state.
func (c *Controller) LEDOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledOn
}

// Connected reports whether a client is currently connected.
func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// HandleWrite processes one characteristic write. Empty payloads and
// unrecognized commands leave the state untouched.
func (c *Controller) HandleWrite(payload []byte) {
	if len(payload) == 0 {
		return
	}

	c.log.Info("[BLE] received", "payload", string(payload))

	cmd, ok := ParseCommand(payload)
	c.publish(events.CommandReceivedEvent{Command: string(payload), Recognized: ok, Timestamp: time.Now()})
	if !ok {
		c.log.Debug("[BLE] ignoring unrecognized command", "payload", string(payload))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch cmd {
	case CommandOn:
		if c.setLED(true) {
			c.log.Info("[LED] turned on")
		}
	case CommandOff:
		if c.setLED(false) {
			c.log.Info("[LED] turned off")
		}
	case CommandToggle:
		if c.setLED(!c.ledOn) {
			c.log.Info("[LED] toggled", "on", c.ledOn)
		}
	case CommandStatus:
		c.sendStatus()
	}
}

// setLED drives the output and, only if that succeeds, records the new
// state. Caller must hold mu.
func (c *Controller) setLED(on bool) bool {
	if err := c.out.Set(on); err != nil {
		c.log.Error("[LED] failed to drive output", "output", c.out.String(), "on", on, "error", err)
		return false
	}
	c.ledOn = on
	c.publish(events.LEDChangedEvent{On: on, Timestamp: time.Now()})
	return true
}

// sendStatus writes the status string into the characteristic, which also
// notifies subscribers. Caller must hold mu.
func (c *Controller) sendStatus() {
	status := StatusPayload(c.ledOn)
	if c.notifier == nil {
		c.log.Warn("[BLE] no characteristic attached, status not sent", "status", status)
		return
	}
	if _, err := c.notifier.Write([]byte(status)); err != nil {
		c.log.Error("[BLE] failed to send status", "status", status, "error", err)
		return
	}
	c.log.Info("[BLE] status sent", "status", status)
	c.publish(events.StatusNotifiedEvent{Payload: status, Timestamp: time.Now()})
}

// OnConnect records that a client connected.
func (c *Controller) OnConnect() {
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	c.log.Info("[BLE] device connected")
	c.publish(events.ConnectionChangedEvent{Connected: true, Timestamp: time.Now()})
}

// OnDisconnect records that the client went away. The control loop picks
// up the edge and restarts advertising.
func (c *Controller) OnDisconnect() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	c.log.Info("[BLE] device disconnected")
	c.publish(events.ConnectionChangedEvent{Connected: false, Timestamp: time.Now()})
}

// Step runs one control loop iteration. On a connected-to-disconnected edge
// it waits SettleDelay and restarts advertising. It returns ctx.Err() if the
// context ends during the wait.
func (c *Controller) Step(ctx context.Context) error {
	c.mu.Lock()
	connected, prev := c.connected, c.prevConnected
	c.mu.Unlock()

	switch {
	case !connected && prev:
		if err := sleep(ctx, c.opts.SettleDelay); err != nil {
			return err
		}
		c.restartAdvertising()
		c.mu.Lock()
		c.prevConnected = c.connected
		c.mu.Unlock()

	case connected && !prev:
		c.mu.Lock()
		c.prevConnected = c.connected
		c.mu.Unlock()
	}
	return nil
}

func (c *Controller) restartAdvertising() {
	c.mu.Lock()
	adv := c.advertiser
	c.mu.Unlock()

	if adv == nil {
		c.log.Warn("[BLE] no advertiser attached, cannot restart advertising")
		return
	}

	err := adv.Start()
	if err != nil {
		c.log.Error("[BLE] failed to restart advertising", "error", err)
	} else {
		c.log.Info("[BLE] start advertising")
	}
	c.publish(events.AdvertisingRestartedEvent{Err: err, Timestamp: time.Now()})
}

// Run calls Step every PollInterval until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := c.Step(ctx); err != nil {
			return err
		}
		if err := sleep(ctx, c.opts.PollInterval); err != nil {
			return err
		}
	}
}

func (c *Controller) publish(ev events.Event) {
	if c.opts.Bus != nil {
		c.opts.Bus.Publish(ev)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
