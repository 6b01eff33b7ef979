package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Output formats accepted by Configure.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config describes the logging setup applied by Configure.
type Config struct {
	// Level is the minimum level to emit: "debug", "info", "warn" or "error".
	Level string

	// Output is the destination stream. Defaults to os.Stderr.
	Output io.Writer

	// Format selects the output encoding: FormatConsole (default) or FormatJSON.
	Format string
}

// Configure builds a zerolog-backed Logger from cfg.
// Intended to be called once during process startup.
//
// The level is applied process-wide via zerolog's global level rather than
// bound to the returned logger, so a later zerolog.SetGlobalLevel call can
// raise or lower it at runtime.
func Configure(cfg Config) (*ZerologAdapter, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		// zerolog's native encoding, write directly
	case FormatConsole, "":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(out).With().Timestamp().Logger()
	return &ZerologAdapter{logger: logger}, nil
}
