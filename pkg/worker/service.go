package worker

import "context"

// Service is a long-running managed unit with explicit lifecycle operations.
// The worker starts services strictly in construction order and stops them
// in reverse.
type Service interface {
	// MaybeStart starts the service if it is not already running.
	// Implementations must be safe to call on an already-started service.
	MaybeStart(ctx context.Context) error

	// Stop shuts the service down and blocks until teardown completes.
	Stop(ctx context.Context) error
}

// Sensor is a passive observer started alongside the worker and attachable
// to services that support it. Sensors form an unordered set; the worker
// deduplicates them by identity.
type Sensor interface {
	// MaybeStart starts the sensor if it is not already running.
	MaybeStart(ctx context.Context) error

	// Stop shuts the sensor down.
	Stop(ctx context.Context) error
}

// SensorHost is implemented by services that accept sensors.
// The worker attaches every sensor to every SensorHost service before
// that service is started; AddSensor must tolerate repeat attachment.
type SensorHost interface {
	AddSensor(Sensor)
}

// Task is a bootstrap function executed concurrently by Run before the
// services are started.
type Task func(ctx context.Context) error

// Titler reports a coarse process status to an external observer, typically
// the OS process title. Implementations are best-effort; failures are not
// surfaced.
type Titler interface {
	Set(title string)
}

// NoopTitler is a Titler that does nothing. It is the default when no
// process-title facility is available.
type NoopTitler struct{}

// Set discards the title.
func (NoopTitler) Set(title string) {}

// Console is an optional interactive debugging surface held open for the
// duration of Run.
type Console interface {
	// Start makes the console available.
	Start() error

	// Close releases the console. Called on every Run exit path.
	Close() error
}

// NoopConsole is a Console that does nothing. It is the default when
// debugging is not requested.
type NoopConsole struct{}

// Start is a no-op.
func (NoopConsole) Start() error { return nil }

// Close is a no-op.
func (NoopConsole) Close() error { return nil }
