package system

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrNotRoot is returned by RequireRoot for unprivileged callers.
var ErrNotRoot = errors.New("this command must be run as root (try with sudo)")

// IsRoot checks if running as root
func IsRoot() bool {
	return unix.Geteuid() == 0
}

// RequireRoot ensures the program is running as root
func RequireRoot() error {
	if !IsRoot() {
		return ErrNotRoot
	}
	return nil
}
