package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/warden/pkg/log"
)

// psIdent prefixes every process-title update.
const psIdent = "[warden]"

// Worker is the lifecycle controller for an ordered set of services and an
// unordered set of sensors. Use New() to create an instance, then Run() or
// Start()/Stop() to drive it.
type Worker struct {
	services []Service
	sensors  []Sensor
	opts     options

	lifecycle *lifecycle

	logMu  sync.RWMutex
	logger log.Logger

	// restartCount is 0 before the first completed start cycle; it gates
	// the one-time initialization path.
	restartCount int

	stopRequested atomic.Bool
	stopping      chan struct{} // closed when shutdown is requested
	done          chan struct{} // closed when shutdown has completed
	stopErr       error

	mu sync.Mutex
}

// New creates a Worker managing the given services in the given order.
// The sequence is copied and immutable afterwards: it is the canonical
// start order and its reverse is the canonical stop order. Sensors are
// supplied via WithSensors and deduplicated by identity.
func New(services []Service, opts ...Option) *Worker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	svcs := make([]Service, len(services))
	copy(svcs, services)

	var sensors []Sensor
	seen := make(map[Sensor]bool, len(o.sensors))
	for _, s := range o.sensors {
		if s == nil || seen[s] {
			continue
		}
		seen[s] = true
		sensors = append(sensors, s)
	}

	w := &Worker{
		services: svcs,
		sensors:  sensors,
		opts:     o,
		logger:   o.logger,
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
	w.lifecycle = newLifecycle(o.logger, o.emitter)
	return w
}

// Start brings the worker up. On the first start it performs one-time
// initialization: logging is configured if a level was supplied, and every
// sensor is started. It then attaches sensors to services that accept them
// and starts each service strictly in sequence order, awaiting each start
// before initiating the next. The first failure aborts the sequence and is
// returned verbatim; already-started services keep running.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lifecycle.State() == StateStopped {
		return ErrStopped
	}

	if w.restartCount == 0 {
		if err := w.onFirstStart(ctx); err != nil {
			return err
		}
	}

	if err := w.lifecycle.TransitionTo(StateStarting, "Start() called"); err != nil {
		return err
	}

	w.setTitle("starting")
	for _, svc := range w.services {
		// Sensors attach before the owning service starts. Attachment is
		// re-attempted for every service; AddSensor must tolerate repeats.
		if host, ok := svc.(SensorHost); ok {
			for _, sensor := range w.sensors {
				host.AddSensor(sensor)
			}
		}
		w.setTitle("running")
		if err := svc.MaybeStart(ctx); err != nil {
			return err
		}
	}
	w.restartCount++

	return w.lifecycle.TransitionTo(StateRunning, "all services started")
}

// onFirstStart runs the initialization that must happen exactly once per
// worker lifetime.
func (w *Worker) onFirstStart(ctx context.Context) error {
	if w.opts.logLevel != "" {
		logger, err := log.Configure(log.Config{
			Level:  w.opts.logLevel,
			Output: w.opts.logOutput,
			Format: w.opts.logFormat,
		})
		if err != nil {
			return err
		}
		w.logMu.Lock()
		w.logger = logger
		w.logMu.Unlock()
		w.lifecycle.setLogger(logger)
	}
	for _, sensor := range w.sensors {
		if err := sensor.MaybeStart(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop tears the worker down: services are stopped in exactly the reverse
// of start order, each stop awaited before the previous service's begins,
// then every sensor is stopped. The first failure aborts the sequence and
// is returned verbatim.
//
// The stop latch is one-way: a second Stop waits for the in-flight
// shutdown and returns its result.
//
// Stop serializes with Start: a start pass in flight when Stop is called
// finishes (or fails) before teardown begins, so no service ever sees its
// start and stop interleaved.
func (w *Worker) Stop(ctx context.Context) error {
	if !w.stopRequested.CompareAndSwap(false, true) {
		<-w.done
		return w.stopErr
	}
	close(w.stopping)

	w.mu.Lock()
	w.stopErr = w.doStop(ctx)
	w.mu.Unlock()
	close(w.done)
	return w.stopErr
}

func (w *Worker) doStop(ctx context.Context) error {
	if err := w.lifecycle.TransitionTo(StateStopping, "Stop() called"); err != nil {
		return err
	}

	w.setTitle("stopping")
	for i := len(w.services) - 1; i >= 0; i-- {
		if err := w.services[i].Stop(ctx); err != nil {
			return err
		}
	}
	for _, sensor := range w.sensors {
		if err := sensor.Stop(ctx); err != nil {
			return err
		}
	}

	return w.lifecycle.TransitionTo(StateStopped, "shutdown complete")
}

// Run is the top-level entry point. It sets a diagnostic process title,
// holds the debug console open for its whole duration, installs the signal
// bridge, executes the bootstrap tasks concurrently (the first task error
// aborts Run), starts the worker, launches the status reporter and blocks
// until shutdown completes or ctx is canceled.
func (w *Worker) Run(ctx context.Context, tasks ...Task) error {
	w.setTitle("init")

	console := Console(NoopConsole{})
	if w.opts.debug {
		console = w.opts.console
	}
	if err := console.Start(); err != nil {
		return err
	}
	defer func() { _ = console.Close() }()

	bridge := newSignalBridge(w)
	bridge.install()
	defer bridge.release()

	if err := w.runTasks(ctx, tasks); err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil {
		return err
	}

	go w.statsLoop()

	select {
	case <-w.done:
		return w.stopErr
	case <-ctx.Done():
		if err := w.Stop(context.Background()); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// runTasks executes the bootstrap tasks concurrently and waits for all of
// them to finish.
func (w *Worker) runTasks(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	errs := make(chan error, len(tasks))
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			errs <- t(ctx)
		}(task)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// State returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (w *Worker) State() State {
	return w.lifecycle.State()
}

// ShouldStop reports whether shutdown has been requested.
// Once true it never reads false again.
func (w *Worker) ShouldStop() bool {
	return w.stopRequested.Load()
}

// StopRequested returns a channel closed when shutdown is requested.
func (w *Worker) StopRequested() <-chan struct{} {
	return w.stopping
}

// Done returns a channel closed when shutdown has completed.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Logger returns the logger currently in use by the worker.
func (w *Worker) Logger() log.Logger {
	w.logMu.RLock()
	defer w.logMu.RUnlock()
	return w.logger
}

func (w *Worker) setTitle(info string) {
	w.opts.title.Set(psIdent + " " + info)
}
