// Command test-led is a manual hardware check for the LED output.
// It blinks the configured LED a few times, then leaves it off.
//
// Usage:
//
//	go run ./cmd/test-led [--backend gpio|sysfs|noop] [--pin GPIO2] [--name ACT]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chaz8081/bleled/internal/config"
	"github.com/chaz8081/bleled/internal/led"
)

func main() {
	def := config.Default().LED
	backend := flag.String("backend", "gpio", "LED backend: gpio, sysfs or noop")
	pin := flag.String("pin", def.Pin, "GPIO pin name (gpio backend)")
	name := flag.String("name", def.SysfsName, "LED name under /sys/class/leds (sysfs backend)")
	count := flag.Int("count", 5, "number of blinks")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	out, err := led.New(config.LEDConfig{
		Backend:   *backend,
		Pin:       *pin,
		SysfsName: *name,
		SysfsRoot: def.SysfsRoot,
	}, logger)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Blinking %s %d times...\n", out, *count)
	for i := 0; i < *count; i++ {
		if err := out.Set(true); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		time.Sleep(300 * time.Millisecond)
		if err := out.Set(false); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		time.Sleep(300 * time.Millisecond)
	}

	fmt.Println("\nDone!")
}
