//go:build linux

package proctitle

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// setTitle renames the process via prctl. The kernel truncates comm names
// to 15 bytes; longer titles are cut rather than rejected.
func setTitle(title string) {
	if len(title) > 15 {
		title = title[:15]
	}
	name, err := unix.BytePtrFromString(title)
	if err != nil {
		return
	}
	_ = unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(name)), 0, 0, 0)
}
