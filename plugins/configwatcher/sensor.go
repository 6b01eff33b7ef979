// Package configwatcher provides a sensor that monitors the warden config
// file and invokes a callback when it changes, so settings like the log
// level can be adjusted without a restart.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/warden/pkg/log"
)

// DefaultDebounceDelay is how long the sensor waits after a file change
// before firing, coalescing editor write bursts into one event.
const DefaultDebounceDelay = 100 * time.Millisecond

// ChangeFunc is invoked with the config path after the file changed.
type ChangeFunc func(path string)

// Sensor watches a single config file. It implements worker.Sensor.
type Sensor struct {
	path     string
	onChange ChangeFunc
	debounce time.Duration
	logger   log.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debTimer *time.Timer
}

// Option configures optional behavior of the config watcher sensor.
type Option func(*Sensor)

// WithDebounceDelay sets the delay between a file change and the callback.
func WithDebounceDelay(d time.Duration) Option {
	return func(s *Sensor) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLogger sets the logger for watcher diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(s *Sensor) {
		s.logger = logger
	}
}

// New creates a sensor watching path and calling onChange on modification.
func New(path string, onChange ChangeFunc, opts ...Option) *Sensor {
	s := &Sensor{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounceDelay,
		logger:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaybeStart begins watching the config file's directory. Safe to call
// more than once; only the first call starts the watch loop. Watching the
// directory rather than the file survives editors that replace the file.
func (s *Sensor) MaybeStart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil
	}
	if s.path == "" || s.onChange == nil {
		s.logger.Warn("config watcher disabled: no path or callback configured")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.logger.Info("config watcher started", log.String("path", s.path))

	s.wg.Add(1)
	go s.watchLoop(watchCtx, watcher)

	return nil
}

// Stop halts the watch loop and waits for it to exit.
func (s *Sensor) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	if s.debTimer != nil {
		s.debTimer.Stop()
		s.debTimer = nil
	}
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	s.wg.Wait()
	return nil
}

// watchLoop delivers debounced change notifications for the watched file.
func (s *Sensor) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer s.wg.Done()
	defer watcher.Close()

	base := filepath.Base(s.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.debounceFire(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (s *Sensor) debounceFire(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debTimer != nil {
		s.debTimer.Stop()
	}
	s.debTimer = time.AfterFunc(s.debounce, func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.logger.Info("config file changed", log.String("path", s.path))
		s.onChange(s.path)
	})
}

// String identifies the sensor in diagnostics.
func (s *Sensor) String() string {
	return "configwatcher(" + s.path + ")"
}
