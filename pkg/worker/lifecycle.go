package worker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/warden/pkg/log"
)

// Common lifecycle errors.
var (
	ErrNotRunning        = errors.New("not running")
	ErrAlreadyRunning    = errors.New("already running")
	ErrStopped           = errors.New("worker already stopped")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// State represents the lifecycle state of the worker.
type State int

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when the worker's lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// lifecycle manages the state machine for the worker.
type lifecycle struct {
	mu           sync.RWMutex
	state        State
	logger       log.Logger
	eventEmitter EventEmitter
}

// newLifecycle creates a lifecycle in StateCreated.
func newLifecycle(logger log.Logger, emitter EventEmitter) *lifecycle {
	return &lifecycle{
		state:        StateCreated,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// setLogger swaps the logger used for transition diagnostics.
func (l *lifecycle) setLogger(logger log.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = logger
}

// State returns the current lifecycle state.
func (l *lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid. Stopped is terminal.
func (l *lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state
	logger := l.logger

	var valid bool
	switch oldState {
	case StateCreated:
		valid = newState == StateStarting
	case StateStarting:
		valid = newState == StateRunning || newState == StateStopping
	case StateRunning:
		valid = newState == StateStopping
	case StateStopping:
		valid = newState == StateStopped
	}
	if !valid {
		l.mu.Unlock()
		return transitionError(oldState, newState)
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)

	return nil
}

// transitionError picks the most descriptive rejection for an invalid
// transition: Stopped is terminal, re-starting reports the worker as
// already running, acting on a never-started worker reports it as not
// running, and everything else names the rejected pair.
func transitionError(from, to State) error {
	switch {
	case from == StateStopped:
		return ErrStopped
	case to == StateStarting:
		return ErrAlreadyRunning
	case from == StateCreated:
		return ErrNotRunning
	default:
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
}
