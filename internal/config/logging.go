package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("%w: log level %q", ErrInvalid, s)
}

// NewLogger builds the process logger for prefix at the configured level.
func (c *Config) NewLogger(w io.Writer, prefix string) *log.Logger {
	lvl, _ := ParseLevel(c.LogLevel)
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	})
}
