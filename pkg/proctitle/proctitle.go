// Package proctitle reports a coarse process status via the OS process
// title. Setting the title is best-effort: on platforms without a title
// facility the setter degrades to a no-op and never returns an error.
package proctitle

// Setter updates the process title. It implements the worker's Titler
// capability.
type Setter struct{}

// New creates a process-title setter for the current platform.
func New() *Setter {
	return &Setter{}
}

// Set updates the process title, silently doing nothing when the platform
// offers no way to.
func (s *Setter) Set(title string) {
	setTitle(title)
}
