package worker

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/bft-labs/warden/pkg/log"
)

// signalBridge translates OS termination signals into a single ordered
// shutdown of the worker. Repeat deliveries while a shutdown is in flight
// are swallowed so they cannot abort the teardown or crash the handler.
type signalBridge struct {
	worker *Worker
	notify chan os.Signal
	owned  bool // bridge registered the channel with the OS itself
	done   chan struct{}
	wg     sync.WaitGroup
}

func newSignalBridge(w *Worker) *signalBridge {
	b := &signalBridge{
		worker: w,
		notify: w.opts.notify,
		done:   make(chan struct{}),
	}
	if b.notify == nil {
		b.notify = make(chan os.Signal, 2)
		b.owned = true
	}
	return b
}

// install registers the termination signals and starts the delivery loop.
func (b *signalBridge) install() {
	if b.owned {
		signal.Notify(b.notify, b.worker.opts.signals...)
	}
	b.wg.Add(1)
	go b.loop()
}

// release unregisters the signals and waits for the loop to exit.
func (b *signalBridge) release() {
	if b.owned {
		signal.Stop(b.notify)
	}
	close(b.done)
	b.wg.Wait()
}

func (b *signalBridge) loop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case sig, ok := <-b.notify:
			if !ok {
				return
			}
			if b.worker.ShouldStop() {
				// Shutdown already in flight; swallow the repeat delivery.
				b.worker.Logger().Debug("signal ignored, shutdown in progress",
					log.String("signal", sig.String()))
				continue
			}
			b.worker.Logger().Warn("termination signal received",
				log.String("signal", sig.String()))
			b.stopOnSignal()
		}
	}
}

// stopOnSignal drives the shutdown to completion and terminates the
// process. A teardown failure exits non-zero instead of being swallowed.
func (b *signalBridge) stopOnSignal() {
	if err := b.worker.Stop(context.Background()); err != nil {
		b.worker.Logger().Error("shutdown failed", log.Err(err))
		b.worker.opts.exit(1)
		return
	}
	b.worker.opts.exit(0)
}
