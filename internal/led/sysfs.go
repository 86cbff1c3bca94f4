package led

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSysfsRoot is where the kernel exposes the LED class.
const DefaultSysfsRoot = "/sys/class/leds"

// sysfs implements Output using the Linux sysfs LED interface
type sysfs struct {
	path string // <root>/<name>
}

// openSysfs checks the LED exists and switches its trigger to "none" so
// brightness writes are not overridden by a kernel trigger.
func openSysfs(root, name string) (*sysfs, error) {
	ledPath := filepath.Join(root, name)
	if _, err := os.Stat(ledPath); err != nil {
		return nil, fmt.Errorf("led: %q not found at %s: %w", name, ledPath, err)
	}

	triggerPath := filepath.Join(ledPath, "trigger")
	if err := os.WriteFile(triggerPath, []byte("none"), 0644); err != nil {
		return nil, fmt.Errorf("led: set trigger to none: %w", err)
	}

	return &sysfs{path: ledPath}, nil
}

func (s *sysfs) Set(on bool) error {
	brightness := "0"
	if on {
		brightness = "1"
	}
	if err := os.WriteFile(filepath.Join(s.path, "brightness"), []byte(brightness), 0644); err != nil {
		return fmt.Errorf("led: set brightness: %w", err)
	}
	return nil
}

func (s *sysfs) String() string {
	return "sysfs:" + s.path
}
