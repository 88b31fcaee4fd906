// Package logging builds the zerolog loggers of the binaries.
package logging

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bunca/bakery-service/config"
)

// New returns a logger for service writing to w at cfg.Level, as JSON when cfg.Format is
// "json" and through a console writer otherwise. The logger also becomes the
// global log.Logger, which library packages log through.
func New(cfg config.LoggingConfig, w io.Writer, service string) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil && cfg.Level != "" {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Str("service", service).Logger()
	log.Logger = logger
	return &logger
}
