package led

import "log/slog"

// noop implements Output for systems without an LED. It only logs.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

func (n *noop) Set(on bool) error {
	n.logger.Debug("[LED] no-op output", "on", on)
	return nil
}

func (n *noop) String() string {
	return "noop"
}
