// Package worker orchestrates the lifecycle of an ordered set of services
// and their attached sensors.
//
// A Worker owns a fixed sequence of services and an unordered set of
// sensors. Start brings sensors up first, then services in sequence order;
// Stop tears services down in exactly the reverse order before stopping
// the sensors. The sequence is immutable after construction.
//
// # Usage
//
// Create a worker and drive it from main:
//
//	w := worker.New(
//	    []worker.Service{db, api},
//	    worker.WithSensors(metrics),
//	    worker.WithLogLevel("info"),
//	)
//
//	if err := w.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Run installs a signal bridge for SIGINT/SIGTERM, starts everything,
// launches a periodic status reporter, and blocks until shutdown.
//
// # Lifecycle States
//
// A Worker moves through [StateCreated], [StateStarting], [StateRunning],
// [StateStopping] and [StateStopped]. Stopped is terminal: the stop latch
// is one-way and a stopped worker cannot be started again.
//
// # Failure Semantics
//
// Service and sensor errors are propagated verbatim and abort the
// remaining start or stop sequence. The worker performs no retries,
// rollback or health checking; resilience belongs to the services
// themselves.
package worker
