// Package logging builds the process logger: text or JSON on stderr, or the
// systemd journal when bleled runs as a service.
package logging

import (
	"io"
	"log/slog"

	"github.com/coreos/go-systemd/v22/journal"
)

// New returns a logger for format "text", "json" or "journal". "journal"
// falls back to text on w when no journal socket is present.
func New(format string, level slog.Level, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts))
	case "journal":
		if journal.Enabled() {
			return slog.New(NewJournalHandler(level))
		}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
