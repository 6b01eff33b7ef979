// Package warden provides a lifecycle orchestrator for ordered groups of
// long-running services and their attached sensors.
//
// Example usage:
//
//	w := warden.New([]warden.Service{db, api},
//	    warden.WithSensors(metrics.New()),
//	    warden.WithLogLevel("info"),
//	)
//	if err := w.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// The heavy lifting lives in the sub-packages; this package re-exports the
// core types for convenient import.
package warden

import (
	"github.com/bft-labs/warden/pkg/worker"
)

// Worker is the lifecycle controller for a fixed, ordered set of services.
type Worker = worker.Worker

// Service is a long-running managed unit with explicit start/stop lifecycle.
type Service = worker.Service

// Sensor is a passive observer started alongside the worker.
type Sensor = worker.Sensor

// SensorHost is implemented by services that accept sensors.
type SensorHost = worker.SensorHost

// Task is a bootstrap function executed concurrently by Run.
type Task = worker.Task

// State is the lifecycle state of a worker.
type State = worker.State

// Lifecycle states of a worker.
const (
	StateCreated  = worker.StateCreated
	StateStarting = worker.StateStarting
	StateRunning  = worker.StateRunning
	StateStopping = worker.StateStopping
	StateStopped  = worker.StateStopped
)

// Option configures optional behavior of a Worker.
type Option = worker.Option

// New creates a Worker managing the given services in the given order.
func New(services []Service, opts ...Option) *Worker {
	return worker.New(services, opts...)
}

// Re-exported worker options.
var (
	WithSensors       = worker.WithSensors
	WithDebug         = worker.WithDebug
	WithLogLevel      = worker.WithLogLevel
	WithLogOutput     = worker.WithLogOutput
	WithLogFormat     = worker.WithLogFormat
	WithLogger        = worker.WithLogger
	WithEventEmitter  = worker.WithEventEmitter
	WithProcessTitle  = worker.WithProcessTitle
	WithConsole       = worker.WithConsole
	WithStatsInterval = worker.WithStatsInterval
	WithStatsOutput   = worker.WithStatsOutput
	WithSignals       = worker.WithSignals
	WithExitFunc      = worker.WithExitFunc
)
