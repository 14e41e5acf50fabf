package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath marks paths rejected before any system call is made.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotBlockDevice is returned for device paths that exist but are not block devices.
	ErrNotBlockDevice = errors.New("not a block device")
)

// CheckPath rejects relative paths, NUL bytes and ".." components.
func CheckPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidPath, path)
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %s must be absolute", ErrInvalidPath, path)
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %s contains a path traversal component", ErrInvalidPath, path)
		}
	}
	return nil
}

// ValidateDevicePath checks that path names an existing block device under
// /dev. Symlinks (LVM, /dev/disk/by-uuid) are accepted when they resolve to
// a block device.
func ValidateDevicePath(path string) error {
	if err := CheckPath(path); err != nil {
		return err
	}
	if !strings.HasPrefix(path, "/dev/") {
		return fmt.Errorf("%w: %s is not under /dev", ErrInvalidPath, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: device %s does not exist", ErrInvalidPath, path)
		}
		return fmt.Errorf("failed to stat device %s: %w", path, err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice == 0 || mode&os.ModeCharDevice != 0 {
		return fmt.Errorf("%w: %s", ErrNotBlockDevice, path)
	}
	return nil
}

// CanonicalPath resolves symlinks in path when it exists and falls back to
// the cleaned path otherwise, so unmounting a vanished directory still works.
func CanonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}
