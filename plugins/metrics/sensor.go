// Package metrics provides a sensor exporting warden lifecycle metrics to
// Prometheus. Attach it to the worker via WithSensors; services that accept
// sensors feed it process events, and the worker feeds it state transitions
// when registered via WithEventEmitter.
package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/warden/pkg/worker"
)

// Sensor collects lifecycle and process metrics.
// It implements worker.Sensor, worker.EventEmitter and the process-observer
// capability of execservice.
type Sensor struct {
	registerer prometheus.Registerer

	mu      sync.Mutex
	started bool

	transitions *prometheus.CounterVec
	procStarts  *prometheus.CounterVec
	procExits   *prometheus.CounterVec
	startTime   prometheus.Gauge
}

// Option configures optional behavior of the metrics sensor.
type Option func(*Sensor)

// WithRegisterer sets the registry the sensor registers its collectors on.
// Defaults to the prometheus default registerer.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(s *Sensor) {
		s.registerer = r
	}
}

// New creates a metrics sensor.
func New(opts ...Option) *Sensor {
	s := &Sensor{
		registerer: prometheus.DefaultRegisterer,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_lifecycle_transitions_total",
			Help: "Lifecycle state transitions of the worker.",
		}, []string{"from", "to"}),
		procStarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_process_starts_total",
			Help: "Child processes started, by service.",
		}, []string{"service"}),
		procExits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_process_exits_total",
			Help: "Child process exits, by service and outcome.",
		}, []string{"service", "outcome"}),
		startTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warden_start_time_seconds",
			Help: "Unix time the worker's sensors were started.",
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaybeStart registers the collectors. Safe to call more than once; only
// the first call registers.
func (s *Sensor) MaybeStart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	for _, c := range s.collectors() {
		if err := s.registerer.Register(c); err != nil {
			return err
		}
	}
	s.startTime.SetToCurrentTime()
	s.started = true
	return nil
}

// Stop unregisters the collectors.
func (s *Sensor) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	for _, c := range s.collectors() {
		s.registerer.Unregister(c)
	}
	s.started = false
	return nil
}

func (s *Sensor) collectors() []prometheus.Collector {
	return []prometheus.Collector{s.transitions, s.procStarts, s.procExits, s.startTime}
}

// OnStateChange counts worker lifecycle transitions.
func (s *Sensor) OnStateChange(previous, current worker.State, reason string) {
	s.transitions.WithLabelValues(previous.String(), current.String()).Inc()
}

// OnProcessStart counts child-process starts.
func (s *Sensor) OnProcessStart(service string, pid int) {
	s.procStarts.WithLabelValues(service).Inc()
}

// OnProcessExit counts child-process exits by outcome.
func (s *Sensor) OnProcessExit(service string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.procExits.WithLabelValues(service, outcome).Inc()
}
