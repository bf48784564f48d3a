package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New constructs the application logger. Development gets a human-readable
// console writer at debug level; everything else logs JSON at info level.
func New(env string) zerolog.Logger {
	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()

	if env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}
