// Package logging builds the zerolog loggers legions processes share.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Formats accepted by Config.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config selects level and output format.
type Config struct {
	Level  string `env:"LEGIONS_LOG_LEVEL" envDefault:"info"`
	Format string `env:"LEGIONS_LOG_FORMAT" envDefault:"json"`
}

// New returns a logger writing to w for service. An empty level means info.
func New(w io.Writer, service string, cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(cfg.Level); s != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", FormatJSON:
	case FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", cfg.Format)
	}
	logger := zerolog.New(w).Level(level).With().Timestamp()
	if service != "" {
		logger = logger.Str("service", service)
	}
	return logger.Logger(), nil
}

// MustStderr is New on stderr, falling back to an info JSON logger when
// cfg is invalid.
func MustStderr(service string, cfg Config) zerolog.Logger {
	logger, err := New(os.Stderr, service, cfg)
	if err != nil {
		logger, _ = New(os.Stderr, service, Config{})
		logger.Warn().Err(err).Msg("invalid log config, using defaults")
	}
	return logger
}
