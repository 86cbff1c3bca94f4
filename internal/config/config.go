package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DeviceName         string        `yaml:"device_name"`
	ServiceUUID        string        `yaml:"service_uuid"`
	CharacteristicUUID string        `yaml:"characteristic_uuid"`
	InitialValue       string        `yaml:"initial_value"`
	LED                LEDConfig     `yaml:"led"`
	Timing             TimingConfig  `yaml:"timing"`
	BlueZ              BlueZConfig   `yaml:"bluez"`
	Metrics            MetricsConfig `yaml:"metrics"`
	LogLevel           string        `yaml:"log_level"`
	LogFormat          string        `yaml:"log_format"` // "text", "json" or "journal"
}

// LEDConfig selects and configures the LED output backend.
type LEDConfig struct {
	Backend   string `yaml:"backend"`    // "gpio", "sysfs" or "noop"
	Pin       string `yaml:"pin"`        // periph.io pin name, gpio backend only
	SysfsName string `yaml:"sysfs_name"` // entry under sysfs_root, sysfs backend only
	SysfsRoot string `yaml:"sysfs_root"`
}

// TimingConfig holds the control loop intervals.
type TimingConfig struct {
	SettleDelay  time.Duration `yaml:"settle_delay"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// BlueZConfig holds Linux BlueZ preflight settings. Ignored on other platforms.
type BlueZConfig struct {
	Adapter string `yaml:"adapter"`
	PowerOn bool   `yaml:"power_on"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the endpoint
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bleled")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DeviceName:         "ESP32_LED_Controller",
		ServiceUUID:        "12345678-1234-1234-1234-123456789abc",
		CharacteristicUUID: "87654321-4321-4321-4321-cba987654321",
		InitialValue:       "Hello World",
		LED: LEDConfig{
			Backend:   "noop",
			Pin:       "GPIO2",
			SysfsName: "ACT",
			SysfsRoot: "/sys/class/leds",
		},
		Timing: TimingConfig{
			SettleDelay:  500 * time.Millisecond,
			PollInterval: 10 * time.Millisecond,
		},
		BlueZ: BlueZConfig{
			Adapter: "hci0",
			PowerOn: true,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in led.sysfs_root is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.LED.SysfsRoot = expandTilde(cfg.LED.SysfsRoot)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.DeviceName == "" {
		return fmt.Errorf("device_name must not be empty")
	}

	if !isUUID(c.ServiceUUID) {
		return fmt.Errorf("service_uuid must be a 128-bit UUID, got %q", c.ServiceUUID)
	}

	if !isUUID(c.CharacteristicUUID) {
		return fmt.Errorf("characteristic_uuid must be a 128-bit UUID, got %q", c.CharacteristicUUID)
	}

	switch c.LED.Backend {
	case "gpio":
		if c.LED.Pin == "" {
			return fmt.Errorf("led.pin must not be empty for the gpio backend")
		}
	case "sysfs":
		if c.LED.SysfsName == "" || c.LED.SysfsRoot == "" {
			return fmt.Errorf("led.sysfs_name and led.sysfs_root must not be empty for the sysfs backend")
		}
	case "noop":
	default:
		return fmt.Errorf("led.backend must be \"gpio\", \"sysfs\" or \"noop\", got %q", c.LED.Backend)
	}

	if c.Timing.SettleDelay < 0 {
		return fmt.Errorf("timing.settle_delay must be >= 0")
	}

	if c.Timing.PollInterval <= 0 {
		return fmt.Errorf("timing.poll_interval must be > 0")
	}

	if c.BlueZ.Adapter == "" {
		return fmt.Errorf("bluez.adapter must not be empty")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.LogFormat {
	case "text", "json", "journal":
	default:
		return fmt.Errorf("log_format must be text, json, or journal, got %q", c.LogFormat)
	}

	return nil
}

// ParseLevel maps a log_level string to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be debug, info, warn, or error, got %q", level)
	}
}

const defaultConfigYAML = `# bleled configuration
# Generated on first run. Edit and restart to apply.

device_name: ESP32_LED_Controller
service_uuid: 12345678-1234-1234-1234-123456789abc
characteristic_uuid: 87654321-4321-4321-4321-cba987654321
initial_value: Hello World

led:
  backend: noop # gpio, sysfs or noop
  pin: GPIO2
  sysfs_name: ACT
  sysfs_root: /sys/class/leds

timing:
  settle_delay: 500ms
  poll_interval: 10ms

bluez:
  adapter: hci0
  power_on: true

metrics:
  listen: "" # e.g. ":9105"

log_level: info
log_format: text # text, json or journal
`

// WriteDefault writes the default config file to DefaultConfigPath.
// If the file already exists it is left untouched and ("", nil) is returned.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// isUUID reports whether s is a UUID in the canonical 8-4-4-4-12 form.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
