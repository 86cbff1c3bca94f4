package ble

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// PeripheralOptions configures the advertised service.
type PeripheralOptions struct {
	LocalName          string
	ServiceUUID        string
	CharacteristicUUID string
	InitialValue       string
	Logger             *slog.Logger // defaults to slog.Default()
}

// Peripheral registers the LED service on a Stack and routes its callbacks
// to a CommandHandler and a ConnectionObserver.
type Peripheral struct {
	stack Stack
	opts  PeripheralOptions
	log   *slog.Logger

	mu   sync.Mutex
	char Characteristic
	adv  Advertiser
}

// NewPeripheral creates a peripheral on the given stack.
func NewPeripheral(stack Stack, opts PeripheralOptions) *Peripheral {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Peripheral{stack: stack, opts: opts, log: log}
}

// localCharacteristic marks writes made by this process. BlueZ stacks
// report a local Write through the characteristic's own write callback,
// and those must not be mistaken for a central's command.
type localCharacteristic struct {
	inner  Characteristic
	active atomic.Bool
}

func (c *localCharacteristic) Write(p []byte) (int, error) {
	c.active.Store(true)
	defer c.active.Store(false)
	return c.inner.Write(p)
}

// Register enables the stack, wires callbacks, registers the service and
// configures advertising without starting it. Characteristic and Advertiser
// are available once it returns.
func (p *Peripheral) Register(handler CommandHandler, observer ConnectionObserver) error {
	if err := p.stack.Enable(); err != nil {
		return fmt.Errorf("ble: enable stack: %w", err)
	}

	p.stack.SetConnectHandler(func(address string, connected bool) {
		if connected {
			p.log.Debug("[BLE] central connected", "address", address)
			observer.OnConnect()
			return
		}
		p.log.Debug("[BLE] central disconnected", "address", address)
		observer.OnDisconnect()
	})

	local := &localCharacteristic{}
	char, err := p.stack.AddService(ServiceConfig{
		ServiceUUID:        p.opts.ServiceUUID,
		CharacteristicUUID: p.opts.CharacteristicUUID,
		InitialValue:       []byte(p.opts.InitialValue),
		OnWrite: func(offset int, value []byte) {
			if local.active.Load() {
				return
			}
			// Commands are a few bytes; partial (offset) writes are not commands.
			if offset != 0 {
				p.log.Debug("[BLE] ignoring write at non-zero offset", "offset", offset, "len", len(value))
				return
			}
			payload := make([]byte, len(value))
			copy(payload, value)
			handler.HandleWrite(payload)
		},
	})
	if err != nil {
		return fmt.Errorf("ble: add service %s: %w", p.opts.ServiceUUID, err)
	}
	local.inner = char

	adv, err := p.stack.Advertisement(p.opts.LocalName, p.opts.ServiceUUID)
	if err != nil {
		return fmt.Errorf("ble: configure advertising: %w", err)
	}

	p.mu.Lock()
	p.char = local
	p.adv = adv
	p.mu.Unlock()
	return nil
}

// Advertise starts advertising. Register must have succeeded first.
func (p *Peripheral) Advertise() error {
	adv := p.Advertiser()
	if adv == nil {
		return errors.New("ble: advertise before register")
	}
	if err := adv.Start(); err != nil {
		return fmt.Errorf("ble: start advertising: %w", err)
	}
	p.log.Info("[BLE] advertising, waiting for a client connection", "name", p.opts.LocalName, "service", p.opts.ServiceUUID)
	return nil
}

// Start registers the service and starts advertising.
func (p *Peripheral) Start(handler CommandHandler, observer ConnectionObserver) error {
	if err := p.Register(handler, observer); err != nil {
		return err
	}
	return p.Advertise()
}

// Characteristic returns the registered characteristic, nil before Register.
func (p *Peripheral) Characteristic() Characteristic {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.char
}

// Advertiser returns the configured advertiser, nil before Register.
func (p *Peripheral) Advertiser() Advertiser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.adv
}

// Close stops advertising.
func (p *Peripheral) Close() error {
	adv := p.Advertiser()
	if adv == nil {
		return nil
	}
	if err := adv.Stop(); err != nil {
		return fmt.Errorf("ble: stop advertising: %w", err)
	}
	return nil
}
