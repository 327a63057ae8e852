// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/dcode-ide/apiserver/config"
)

// Logger is the structured logger used across the server.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// New builds a logger writing to out. JSON output is meant for deployments,
// text output for local development.
func New(cfg config.LogConfig, out io.Writer) *charmlog.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02T15:04:05.000Z07:00",
		Level:           ParseLevel(cfg.Level),
		Prefix:          "dcode",
	})
	if cfg.JSON {
		logger.SetFormatter(charmlog.JSONFormatter)
	} else {
		logger.SetFormatter(charmlog.TextFormatter)
	}
	return logger
}

// Setup builds a logger from cfg and installs it as the package default.
func Setup(cfg config.LogConfig) *charmlog.Logger {
	logger := New(cfg, os.Stdout)
	charmlog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *charmlog.Logger {
	return charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel})
}

func ParseLevel(level string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}
