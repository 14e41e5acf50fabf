package state

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

const (
	recordSuffix  = ".json"
	maxKeyNameLen = 255
)

// ErrInvalidKey is returned for mount points that cannot be used as a key.
var ErrInvalidKey = errors.New("invalid state key")

// escapeKey turns an absolute mount point into a single file name the way
// systemd-escape --path does: "/mnt/my-disk" becomes "mnt-my\x2ddisk".
// The mapping is injective, so distinct mount points never share a file.
func escapeKey(mountPoint string) (string, error) {
	if !path.IsAbs(mountPoint) || strings.ContainsRune(mountPoint, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, mountPoint)
	}
	clean := strings.Trim(path.Clean(mountPoint), "/")
	if clean == "" {
		return "-" + recordSuffix, nil
	}

	var b strings.Builder
	for i := 0; i < len(clean); i++ {
		c := clean[i]
		switch {
		case c == '/':
			b.WriteByte('-')
		case c == '.' && i == 0:
			fmt.Fprintf(&b, `\x%02x`, c)
		case isKeyChar(c):
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}

	name := b.String() + recordSuffix
	if len(name) > maxKeyNameLen {
		return "", fmt.Errorf("%w: %s escapes to more than %d bytes", ErrInvalidKey, mountPoint, maxKeyNameLen)
	}
	return name, nil
}

// unescapeKey reverses escapeKey.
func unescapeKey(name string) (string, error) {
	body, ok := strings.CutSuffix(name, recordSuffix)
	if !ok || body == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	if body == "-" {
		return "/", nil
	}

	var b strings.Builder
	b.WriteByte('/')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '-':
			b.WriteByte('/')
		case c == '\\':
			if i+4 > len(body) || body[i+1] != 'x' {
				return "", fmt.Errorf("%w: bad escape in %q", ErrInvalidKey, name)
			}
			v, err := strconv.ParseUint(body[i+2:i+4], 16, 8)
			if err != nil {
				return "", fmt.Errorf("%w: bad escape in %q", ErrInvalidKey, name)
			}
			b.WriteByte(byte(v))
			i += 3
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func isKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == ':' || c == '_' || c == '.'
}
