package worker

import (
	"fmt"
	"strings"
	"time"
)

// statsLoop periodically writes a one-line status summary of the managed
// services until shutdown is requested. It exits within one interval of
// the stop latch closing and has no other side effects.
func (w *Worker) statsLoop() {
	ticker := time.NewTicker(w.opts.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopping:
			return
		case <-ticker.C:
			fmt.Fprintln(w.opts.statsOutput, renderStatus(w.services))
		}
	}
}

// renderStatus renders a single service directly and any other count as a
// list-like form, so a fixed-size group and a variable-length collection
// are indistinguishable in diagnostics.
func renderStatus(services []Service) string {
	if len(services) == 1 {
		return fmt.Sprint(services[0])
	}
	parts := make([]string, len(services))
	for i, svc := range services {
		parts[i] = fmt.Sprint(svc)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
