package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chaz8081/bleled/internal/config"
)

func TestApplyOverrides(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Parse([]string{"--log-level", "debug", "--log-format", "json", "--led", "sysfs"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg := config.Default()
	cfg.Metrics.Listen = ":9105"

	var opts rootOptions
	opts.logLevel, _ = cmd.Flags().GetString("log-level")
	opts.logFormat, _ = cmd.Flags().GetString("log-format")
	opts.ledBackend, _ = cmd.Flags().GetString("led")
	applyOverrides(cmd.Flags(), &opts, cfg)

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.LED.Backend != "sysfs" {
		t.Errorf("LED.Backend = %q, want sysfs", cfg.LED.Backend)
	}
	if cfg.Metrics.Listen != ":9105" {
		t.Errorf("Metrics.Listen = %q, unset flag should not override", cfg.Metrics.Listen)
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.DeviceName != config.Default().DeviceName {
		t.Errorf("DeviceName = %q, want default", cfg.DeviceName)
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleled.yaml")
	if err := os.WriteFile(path, []byte("device_name: Bench\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.DeviceName != "Bench" {
		t.Errorf("DeviceName = %q, want Bench", cfg.DeviceName)
	}
}

func TestInitConfigCommand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init-config"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init-config error = %v", err)
	}
	if !strings.Contains(out.String(), "Wrote default config") {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "bleled", "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init-config"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("second init-config error = %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("output = %q, want already exists", out.String())
	}
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleled.yaml")
	if err := os.WriteFile(path, []byte("led:\n  backend: pwm\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", path})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "config validation") {
		t.Errorf("Execute() error = %v, want config validation error", err)
	}
}
