package led

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// gpioOutput implements Output on a periph.io GPIO pin.
type gpioOutput struct {
	pin gpio.PinOut
}

// openGPIO initializes the periph.io host drivers and looks up the pin by
// name (e.g. "GPIO2", "P1_11").
func openGPIO(name string) (*gpioOutput, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("led: init periph host: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("led: gpio pin %q not found", name)
	}
	return newGPIO(p), nil
}

func newGPIO(pin gpio.PinOut) *gpioOutput {
	return &gpioOutput{pin: pin}
}

func (g *gpioOutput) Set(on bool) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := g.pin.Out(level); err != nil {
		return fmt.Errorf("led: drive %s %s: %w", g.pin.Name(), level, err)
	}
	return nil
}

func (g *gpioOutput) String() string {
	return "gpio:" + g.pin.Name()
}
