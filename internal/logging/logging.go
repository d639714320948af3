package logging

import (
	"os"
	"strings"

	"github.com/VoidMesh/voxelserver/internal/config"
	"github.com/charmbracelet/log"
)

var Logger *log.Logger

// Init configures the global logger from the loaded config. Call once at
// process startup before any component logs.
func Init(cfg config.LoggingConfig) {
	Logger = log.New(os.Stderr)
	Logger.SetReportTimestamp(true)

	switch strings.ToLower(cfg.Level) {
	case "debug":
		Logger.SetLevel(log.DebugLevel)
	case "warn", "warning":
		Logger.SetLevel(log.WarnLevel)
	case "error":
		Logger.SetLevel(log.ErrorLevel)
	default:
		Logger.SetLevel(log.InfoLevel)
	}

	if cfg.Format == "json" {
		Logger.SetFormatter(log.JSONFormatter)
	} else {
		Logger.SetReportCaller(true)
	}

	Logger.SetPrefix("[voxelserver] ")
}

// GetLogger returns the global logger, initializing it with defaults if
// no caller has configured it yet (used by packages whose tests don't
// go through Init).
func GetLogger() *log.Logger {
	if Logger == nil {
		Logger = log.New(os.Stderr)
	}
	return Logger
}

// WithComponent returns a child logger tagged with a component name, the
// way session/scheduler/bridge each identify their log lines.
func WithComponent(name string) *log.Logger {
	return GetLogger().With("component", name)
}
