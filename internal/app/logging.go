package app

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// LogPrefix is prepended to every log line.
const LogPrefix = "cadence"

// NewLogger creates the application logger writing to w (stderr when nil).
// An empty level means info.
func NewLogger(level string, w io.Writer) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	return log.NewWithOptions(w, log.Options{
		Prefix: LogPrefix,
		Level:  lvl,
	}), nil
}
