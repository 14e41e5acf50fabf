package volume

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	// MapperPrefix marks device-mapper nodes managed by luksctl.
	MapperPrefix = "luks-"
	// MapperDir is where udev exposes device-mapper nodes.
	MapperDir = "/dev/mapper"

	maxMapperNameLen = 128
)

var (
	// ErrNotLUKS is returned when a device carries no readable LUKS header.
	ErrNotLUKS = errors.New("device is not a LUKS volume")
	// ErrInvalidMapperName is returned for names outside the luks-* convention.
	ErrInvalidMapperName = errors.New("invalid mapper name")
)

// UUIDReader reads the LUKS volume UUID of a block device.
type UUIDReader interface {
	VolumeUUID(device string) (string, error)
}

// DeriveMapperID returns the mapper identifier for device. The identifier
// is a pure function of the LUKS volume UUID, so the same device always maps
// to the same node and a second unlock is detected instead of duplicated.
func DeriveMapperID(r UUIDReader, device string) (string, error) {
	raw, err := r.VolumeUUID(device)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotLUKS, device, err)
	}
	return MapperID(raw)
}

// MapperID converts a LUKS volume UUID to its mapper identifier,
// e.g. "A1B2C3D4-..." becomes "luks-a1b2c3d4-...".
func MapperID(volumeUUID string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(volumeUUID))
	if err != nil {
		return "", fmt.Errorf("%w: bad volume uuid %q: %w", ErrNotLUKS, volumeUUID, err)
	}
	return MapperPrefix + id.String(), nil
}

// ValidateMapperName checks that name follows the luks-* convention and is
// safe to hand to cryptsetup and to join under /dev/mapper.
func ValidateMapperName(name string) error {
	if name == "" || len(name) > maxMapperNameLen {
		return fmt.Errorf("%w: length must be 1-%d", ErrInvalidMapperName, maxMapperNameLen)
	}
	if !strings.HasPrefix(name, MapperPrefix) || len(name) == len(MapperPrefix) {
		return fmt.Errorf("%w: %q must start with %q", ErrInvalidMapperName, name, MapperPrefix)
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidMapperName, name)
		}
	}
	return nil
}

// MapperPath returns the device node path for a mapper identifier.
func MapperPath(mapperID string) string {
	return filepath.Join(MapperDir, mapperID)
}

// MapperFromDevice extracts the mapper identifier from a /dev/mapper/luks-*
// device path. ok is false for any other device.
func MapperFromDevice(device string) (string, bool) {
	name, found := strings.CutPrefix(device, MapperDir+"/")
	if !found {
		return "", false
	}
	if ValidateMapperName(name) != nil {
		return "", false
	}
	return name, true
}
