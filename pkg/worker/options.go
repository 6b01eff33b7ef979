package worker

import (
	"io"
	"os"
	"syscall"
	"time"

	"github.com/bft-labs/warden/pkg/log"
)

// DefaultStatsInterval is the default period of the status reporter.
const DefaultStatsInterval = 5 * time.Second

// Option configures optional behavior of a Worker.
type Option func(*options)

// options holds the optional configuration for a Worker.
type options struct {
	sensors       []Sensor
	debug         bool
	logLevel      string
	logOutput     io.Writer
	logFormat     string
	logger        log.Logger
	emitter       EventEmitter
	title         Titler
	console       Console
	statsInterval time.Duration
	statsOutput   io.Writer
	signals       []os.Signal
	notify        chan os.Signal
	exit          func(code int)
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger:        log.NewNoopLogger(),
		title:         NoopTitler{},
		console:       NoopConsole{},
		statsInterval: DefaultStatsInterval,
		statsOutput:   os.Stdout,
		signals:       []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		exit:          os.Exit,
	}
}

// WithSensors adds sensors to the worker's sensor set.
// Duplicate sensors are ignored.
func WithSensors(sensors ...Sensor) Option {
	return func(o *options) {
		o.sensors = append(o.sensors, sensors...)
	}
}

// WithDebug enables the interactive debug console during Run.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithLogLevel sets the log level configured on first start.
// If empty, the worker leaves logging untouched.
func WithLogLevel(level string) Option {
	return func(o *options) {
		o.logLevel = level
	}
}

// WithLogOutput sets the log destination used when a log level is configured.
// Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithLogFormat sets the log encoding used when a log level is configured:
// log.FormatConsole (default) or log.FormatJSON.
func WithLogFormat(format string) Option {
	return func(o *options) {
		o.logFormat = format
	}
}

// WithLogger sets a custom logger for the worker's own diagnostics.
// If not provided, a no-op logger is used until first-start logging
// configuration (if any) replaces it.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventEmitter sets a handler for lifecycle state-change events.
// Events are called synchronously from the transitioning goroutine.
func WithEventEmitter(emitter EventEmitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// WithProcessTitle sets the process-title collaborator.
// If not provided, title updates are discarded.
func WithProcessTitle(t Titler) Option {
	return func(o *options) {
		o.title = t
	}
}

// WithConsole sets the debug console acquired during Run when debugging
// is enabled.
func WithConsole(c Console) Option {
	return func(o *options) {
		o.console = c
	}
}

// WithStatsInterval sets the period of the status reporter.
func WithStatsInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.statsInterval = d
		}
	}
}

// WithStatsOutput sets the destination of the periodic status line.
// Defaults to stdout.
func WithStatsOutput(w io.Writer) Option {
	return func(o *options) {
		o.statsOutput = w
	}
}

// WithSignals sets the OS signals that trigger shutdown.
// Defaults to SIGINT and SIGTERM.
func WithSignals(signals ...os.Signal) Option {
	return func(o *options) {
		o.signals = signals
	}
}

// WithNotifyChannel injects the channel the signal bridge receives on.
// Intended for tests; if not provided, the bridge allocates its own and
// registers it with the OS.
func WithNotifyChannel(ch chan os.Signal) Option {
	return func(o *options) {
		o.notify = ch
	}
}

// WithExitFunc overrides the function called to terminate the process after
// a signal-triggered shutdown completes. Defaults to os.Exit.
func WithExitFunc(exit func(code int)) Option {
	return func(o *options) {
		o.exit = exit
	}
}
