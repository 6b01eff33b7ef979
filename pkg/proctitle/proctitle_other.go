//go:build !linux

package proctitle

// setTitle is a no-op on platforms without a process-title facility.
func setTitle(title string) {}
