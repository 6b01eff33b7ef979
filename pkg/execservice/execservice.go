// Package execservice runs a child process as a worker-managed service.
//
// A Service wraps os/exec: MaybeStart launches the command once and is a
// no-op while it runs, Stop delivers SIGTERM and escalates to SIGKILL
// after a grace period. Sensors attached via AddSensor that implement
// ProcessObserver are notified of process starts and exits.
package execservice

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/bft-labs/warden/pkg/log"
	"github.com/bft-labs/warden/pkg/worker"
)

// DefaultGracePeriod is how long Stop waits after SIGTERM before killing
// the process.
const DefaultGracePeriod = 10 * time.Second

// ProcessObserver is implemented by sensors interested in child-process
// lifecycle events.
type ProcessObserver interface {
	OnProcessStart(service string, pid int)
	OnProcessExit(service string, err error)
}

// Service supervises a single child process.
// It implements worker.Service, worker.SensorHost and fmt.Stringer.
type Service struct {
	name    string
	command string
	args    []string
	dir     string
	env     []string
	grace   time.Duration
	logger  log.Logger

	mu        sync.Mutex
	cmd       *exec.Cmd
	waitDone  chan struct{} // closed when the process has exited
	exitErr   error
	started   bool
	observers []ProcessObserver
	sensors   map[worker.Sensor]bool
}

// Option configures optional behavior of a Service.
type Option func(*Service)

// WithDir sets the working directory of the child process.
func WithDir(dir string) Option {
	return func(s *Service) {
		s.dir = dir
	}
}

// WithEnv sets extra environment variables (KEY=VALUE) appended to the
// current environment.
func WithEnv(env []string) Option {
	return func(s *Service) {
		s.env = env
	}
}

// WithGracePeriod sets how long Stop waits after SIGTERM before SIGKILL.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.grace = d
		}
	}
}

// WithLogger sets the logger for process diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a service that runs command with args under the given name.
func New(name, command string, args []string, opts ...Option) *Service {
	s := &Service{
		name:    name,
		command: command,
		args:    args,
		grace:   DefaultGracePeriod,
		logger:  log.NewNoopLogger(),
		sensors: make(map[worker.Sensor]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSensor registers a sensor with the service. Repeat attachment of the
// same sensor is a no-op. Sensors implementing ProcessObserver receive
// process lifecycle events.
func (s *Service) AddSensor(sensor worker.Sensor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sensors[sensor] {
		return
	}
	s.sensors[sensor] = true
	if obs, ok := sensor.(ProcessObserver); ok {
		s.observers = append(s.observers, obs)
	}
}

// MaybeStart launches the child process if it has not been started yet.
// Calling it again after a successful start is a no-op, even if the
// process has since exited: the service does not restart its child.
func (s *Service) MaybeStart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	cmd := exec.Command(s.command, s.args...)
	cmd.Dir = s.dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.name, err)
	}
	s.cmd = cmd
	s.started = true
	s.waitDone = make(chan struct{})

	s.logger.Info("process started",
		log.String("service", s.name),
		log.Int("pid", cmd.Process.Pid),
	)
	observers := append([]ProcessObserver{}, s.observers...)
	for _, obs := range observers {
		obs.OnProcessStart(s.name, cmd.Process.Pid)
	}

	waitDone := s.waitDone
	go func() {
		err := cmd.Wait()

		s.mu.Lock()
		s.exitErr = err
		observers := append([]ProcessObserver{}, s.observers...)
		s.mu.Unlock()
		close(waitDone)

		if err != nil {
			s.logger.Warn("process exited",
				log.String("service", s.name),
				log.Err(err),
			)
		} else {
			s.logger.Info("process exited", log.String("service", s.name))
		}
		for _, obs := range observers {
			obs.OnProcessExit(s.name, err)
		}
	}()

	return nil
}

// Stop terminates the child process: SIGTERM first, SIGKILL once the grace
// period expires. Returns nil if the process was never started or has
// already exited.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	cmd := s.cmd
	waitDone := s.waitDone
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}

	// Already exited?
	select {
	case <-waitDone:
		return nil
	default:
	}

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// The process may have exited between the check and the signal.
		select {
		case <-waitDone:
			return nil
		case <-time.After(100 * time.Millisecond):
			return fmt.Errorf("signal %s: %w", s.name, err)
		}
	}

	select {
	case <-waitDone:
		return nil
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-waitDone
		return ctx.Err()
	case <-time.After(s.grace):
		s.logger.Warn("grace period expired, killing process",
			log.String("service", s.name),
			log.Duration("grace", s.grace),
		)
		_ = cmd.Process.Kill()
		<-waitDone
		return nil
	}
}

// Exited reports whether the child process has exited, and with what error.
func (s *Service) Exited() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.waitDone == nil {
		return false, nil
	}
	select {
	case <-s.waitDone:
		return true, s.exitErr
	default:
		return false, nil
	}
}

// String returns the service name with its command, used by the worker's
// status reporter.
func (s *Service) String() string {
	return fmt.Sprintf("%s(%s)", s.name, s.command)
}
