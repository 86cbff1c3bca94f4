package led

import (
	"fmt"
	"log/slog"

	"github.com/chaz8081/bleled/internal/config"
)

// New builds the Output selected by cfg.Backend.
func New(cfg config.LEDConfig, logger *slog.Logger) (Output, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "gpio":
		return openGPIO(cfg.Pin)
	case "sysfs":
		root := cfg.SysfsRoot
		if root == "" {
			root = DefaultSysfsRoot
		}
		return openSysfs(root, cfg.SysfsName)
	case "noop", "":
		logger.Info("[LED] no LED hardware configured, using no-op output")
		return newNoop(logger), nil
	default:
		return nil, fmt.Errorf("led: unknown backend %q", cfg.Backend)
	}
}
