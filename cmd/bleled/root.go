package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/chaz8081/bleled/internal/ble"
	"github.com/chaz8081/bleled/internal/config"
	"github.com/chaz8081/bleled/internal/control"
	"github.com/chaz8081/bleled/internal/events"
	"github.com/chaz8081/bleled/internal/led"
	"github.com/chaz8081/bleled/internal/logging"
	"github.com/chaz8081/bleled/internal/metrics"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	ledBackend string
	metrics    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "bleled",
		Short:         "Control an LED over Bluetooth Low Energy",
		Long:          `bleled advertises a GATT service with one read/write/notify characteristic. Writing ON, OFF or TOGGLE drives the LED; STATUS notifies LED_ON or LED_OFF.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			applyOverrides(cmd.Flags(), opts, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: ~/.config/bleled/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "override log_format (text, json, journal)")
	flags.StringVar(&opts.ledBackend, "led", "", "override led.backend (gpio, sysfs, noop)")
	flags.StringVar(&opts.metrics, "metrics", "", "override metrics.listen address, e.g. :9105")

	cmd.AddCommand(newInitConfigCmd())
	return cmd
}

// applyOverrides copies explicitly set flags over the loaded config.
func applyOverrides(flags *pflag.FlagSet, opts *rootOptions, cfg *config.Config) {
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("led") {
		cfg.LED.Backend = opts.ledBackend
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Listen = opts.metrics
	}
}

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write the default config file if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefault()
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", config.DefaultConfigPath())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
			return nil
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := logging.New(cfg.LogFormat, level, os.Stderr)
	slog.SetDefault(logger)

	printBanner(cfg)
	slog.Info("Starting BLE LED control")

	out, err := led.New(cfg.LED, logger)
	if err != nil {
		return err
	}
	slog.Info("[LED] output ready", "output", out.String())

	bus := events.New()
	collector := metrics.New()
	collector.Subscribe(bus)
	defer collector.Close()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.Metrics.Listen); err != nil {
				slog.Error("[metrics] server stopped", "error", err)
			}
		}()
	}

	ctrl := control.New(out, control.Options{
		SettleDelay:  cfg.Timing.SettleDelay,
		PollInterval: cfg.Timing.PollInterval,
		Logger:       logger,
		Bus:          bus,
	})
	if err := ctrl.Init(); err != nil {
		return err
	}

	if err := ble.EnsureAdapterPowered(cfg.BlueZ.Adapter, cfg.BlueZ.PowerOn); err != nil {
		return err
	}

	peripheral := ble.NewPeripheral(ble.NewTinyGoStack(), ble.PeripheralOptions{
		LocalName:          cfg.DeviceName,
		ServiceUUID:        cfg.ServiceUUID,
		CharacteristicUUID: cfg.CharacteristicUUID,
		InitialValue:       cfg.InitialValue,
		Logger:             logger,
	})
	if err := peripheral.Register(ctrl, ctrl); err != nil {
		return err
	}
	ctrl.SetNotifier(peripheral.Characteristic())
	ctrl.SetAdvertiser(peripheral.Advertiser())

	if err := peripheral.Advertise(); err != nil {
		return err
	}
	defer peripheral.Close()

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		slog.Warn("sd_notify failed", "error", err)
	} else if sent {
		slog.Debug("Notified systemd of readiness")
	}

	err = ctrl.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("Shutting down")
		return nil
	}
	return err
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		slog.Info("Config loaded", "path", defaultPath)
		return cfg, nil
	}

	slog.Info("No config file found, using defaults")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== bleled ===")
	fmt.Printf("  Name:     %s\n", cfg.DeviceName)
	fmt.Printf("  Service:  %s\n", cfg.ServiceUUID)
	fmt.Printf("  Char:     %s\n", cfg.CharacteristicUUID)
	fmt.Printf("  LED:      %s\n", cfg.LED.Backend)
	fmt.Printf("  Timing:   settle %s, poll %s\n", cfg.Timing.SettleDelay, cfg.Timing.PollInterval)
	if cfg.Metrics.Listen != "" {
		fmt.Printf("  Metrics:  %s\n", cfg.Metrics.Listen)
	}
	fmt.Printf("  Log:      %s (%s)\n", cfg.LogLevel, cfg.LogFormat)
	fmt.Println("==============")
}
