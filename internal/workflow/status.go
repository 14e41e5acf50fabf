package workflow

import (
	"errors"

	"github.com/nace/luksctl/internal/state"
	"github.com/nace/luksctl/internal/volume"
)

// VolumeStatus is the live view of one tracked or untracked volume.
type VolumeStatus struct {
	MountPoint   string
	MapperID     string
	SourceDevice string
	Tracked      bool
	Active       bool
	Mounted      bool
	Record       *state.Record
}

// Stale reports whether a tracked record no longer matches the system.
func (s VolumeStatus) Stale() bool {
	return s.Tracked && !s.Active && !s.Mounted
}

// Status lists every tracked record and every luks-* mount that has no
// record. Unreadable records are reported as warnings.
func (o *Orchestrator) Status() ([]VolumeStatus, []*Error, error) {
	var (
		out      []VolumeStatus
		warnings []*Error
		seen     = make(map[string]bool)
	)

	for rec, err := range o.store.List() {
		if err != nil {
			if errors.Is(err, state.ErrUnavailable) {
				return nil, nil, newError(StoreUnavailable, "", err)
			}
			warnings = append(warnings, newError(StaleRecord, recordPath(err), err))
			continue
		}
		mounted, _ := o.table.IsMounted(rec.MountPoint)
		r := rec
		out = append(out, VolumeStatus{
			MountPoint:   rec.MountPoint,
			MapperID:     rec.MapperID,
			SourceDevice: rec.SourceDevice,
			Tracked:      true,
			Active:       o.locker.IsActive(rec.MapperID),
			Mounted:      mounted,
			Record:       &r,
		})
		seen[rec.MountPoint] = true
	}

	mounts, err := o.table.Mounts()
	if err != nil {
		o.log.Debug().Err(err).Msg("mount table unavailable")
		return out, warnings, nil
	}
	for _, m := range mounts {
		if seen[m.MountPoint] {
			continue
		}
		seen[m.MountPoint] = true
		mapperID, _ := volume.MapperFromDevice(m.Device)
		out = append(out, VolumeStatus{
			MountPoint:   m.MountPoint,
			MapperID:     mapperID,
			SourceDevice: m.Device,
			Active:       true,
			Mounted:      true,
		})
	}
	return out, warnings, nil
}

// Prune removes records whose mapper node is closed and whose mount point
// is no longer mounted. It returns the mount points that were cleared.
func (o *Orchestrator) Prune() ([]string, []*Error, error) {
	if err := o.store.Ready(); err != nil {
		return nil, nil, newError(StoreUnavailable, "", err)
	}

	var (
		pruned   []string
		warnings []*Error
	)
	for rec, err := range o.store.List() {
		if err != nil {
			warnings = append(warnings, newError(StaleRecord, recordPath(err), err))
			continue
		}
		mounted, tableErr := o.table.IsMounted(rec.MountPoint)
		if tableErr != nil || mounted || o.locker.IsActive(rec.MapperID) {
			continue
		}
		if err := o.store.Remove(rec.MountPoint); err != nil {
			warnings = append(warnings, newError(RecordRemoveFailed, rec.MountPoint, err))
			continue
		}
		o.log.Debug().Str("mount_point", rec.MountPoint).Str("mapper", rec.MapperID).Msg("pruned stale record")
		pruned = append(pruned, rec.MountPoint)
	}
	return pruned, warnings, nil
}

// recordPath names the record behind a List error: its mount point when
// the file name decodes, the file itself otherwise.
func recordPath(err error) string {
	var recErr *state.RecordError
	if !errors.As(err, &recErr) {
		return ""
	}
	if recErr.MountPoint != "" {
		return recErr.MountPoint
	}
	return recErr.File
}
