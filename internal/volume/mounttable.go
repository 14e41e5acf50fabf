package volume

import (
	"errors"
	"fmt"

	"github.com/moby/sys/mountinfo"
	"github.com/nace/luksctl/internal/system"
)

// ErrNotMounted is returned when nothing suitable is mounted at a path.
var ErrNotMounted = errors.New("not mounted")

// MountEntry is one row of the live mount table.
type MountEntry struct {
	Device     string
	MountPoint string
	FSType     string
}

// MountTable reads the kernel mount table of the current mount namespace.
// It never mutates system state.
type MountTable struct {
	getMounts func(mountinfo.FilterFunc) ([]*mountinfo.Info, error)
}

// NewMountTable creates a mount table backed by /proc/self/mountinfo
func NewMountTable() *MountTable {
	return &MountTable{getMounts: mountinfo.GetMounts}
}

// Lookup returns the topmost mount at mountPoint. The path is
// canonicalized first because mountinfo reports resolved paths.
func (t *MountTable) Lookup(mountPoint string) (MountEntry, error) {
	target := system.CanonicalPath(mountPoint)

	infos, err := t.getMounts(func(info *mountinfo.Info) (skip, stop bool) {
		return info.Mountpoint != target, false
	})
	if err != nil {
		return MountEntry{}, fmt.Errorf("failed to read mount table: %w", err)
	}
	if len(infos) == 0 {
		return MountEntry{}, fmt.Errorf("%w: %s", ErrNotMounted, target)
	}

	// Later entries are mounted over earlier ones.
	top := infos[len(infos)-1]
	return MountEntry{
		Device:     top.Source,
		MountPoint: top.Mountpoint,
		FSType:     top.FSType,
	}, nil
}

// IsMounted reports whether anything is mounted at mountPoint.
func (t *MountTable) IsMounted(mountPoint string) (bool, error) {
	_, err := t.Lookup(mountPoint)
	if errors.Is(err, ErrNotMounted) {
		return false, nil
	}
	return err == nil, err
}

// ResolveMapper returns the luks-* mapper identifier mounted at mountPoint.
// Mounts of other devices count as not mounted.
func (t *MountTable) ResolveMapper(mountPoint string) (string, error) {
	entry, err := t.Lookup(mountPoint)
	if err != nil {
		return "", err
	}
	mapperID, ok := MapperFromDevice(entry.Device)
	if !ok {
		return "", fmt.Errorf("%w: %s is backed by %s, not a %s* mapper node",
			ErrNotMounted, entry.MountPoint, entry.Device, MapperPrefix)
	}
	return mapperID, nil
}

// Mounts lists every mount backed by a luks-* mapper node.
func (t *MountTable) Mounts() ([]MountEntry, error) {
	infos, err := t.getMounts(func(info *mountinfo.Info) (skip, stop bool) {
		_, ok := MapperFromDevice(info.Source)
		return !ok, false
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read mount table: %w", err)
	}

	entries := make([]MountEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, MountEntry{
			Device:     info.Source,
			MountPoint: info.Mountpoint,
			FSType:     info.FSType,
		})
	}
	return entries, nil
}
