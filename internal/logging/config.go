// Package logging configures the process-wide zerolog logger: console
// output stamped with boot-relative uptime, env overrides, and an optional
// rotating file sink.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	EnvLogLevel   = "CORCD_LOG_LEVEL"
	EnvLogNoColor = "CORCD_LOG_NOCOLOR"
	EnvLogFile    = "CORCD_LOG_FILE"
)

// Config selects the logging sinks and level.
type Config struct {
	Level   zerolog.Level
	NoColor bool

	// File, when non-empty, adds a rotating JSON log file alongside the
	// console output.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

func DefaultConfig(profile Profile) Config {
	cfg := Config{
		Level:      zerolog.InfoLevel,
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
	if profile == ProfileTest {
		cfg.Level = zerolog.DebugLevel
		cfg.NoColor = true
	}
	return cfg
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(DefaultConfig(ProfileRuntime))
}

func ConfigureTests() {
	Configure(DefaultConfig(ProfileTest))
}

// Configure installs the global logger. First call wins; later calls are
// no-ops so tests and the binary can both configure defensively.
func Configure(cfg Config) {
	configureOnce.Do(func() {
		applyEnvOverrides(&cfg)

		console := zerolog.ConsoleWriter{
			Out:     os.Stdout,
			NoColor: cfg.NoColor,
		}
		console.FormatTimestamp = func(_ interface{}) string {
			return Stamp()
		}

		var sink io.Writer = console
		if cfg.File != "" {
			sink = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
			})
		}

		log.Logger = zerolog.New(sink).
			Level(cfg.Level).
			With().Timestamp().Logger()
	})
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if path := strings.TrimSpace(os.Getenv(EnvLogFile)); path != "" {
		cfg.File = path
	}
}

// ParseLevel maps a config or env string to a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
