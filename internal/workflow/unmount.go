package workflow

import (
	"errors"
	"path"

	"github.com/nace/luksctl/internal/state"
	"github.com/nace/luksctl/internal/system"
	"github.com/nace/luksctl/internal/volume"
)

// UnmountRequest describes one unmount-and-lock operation.
type UnmountRequest struct {
	MountPoint string
	Force      bool
}

// UnmountResult describes a completed unmount. MapperID is the node that
// was resolved, from the state store or the mount table.
type UnmountResult struct {
	MountPoint string
	MapperID   string
	// FromMountTable is set when no record was found and the mapper was
	// resolved from the live mount table.
	FromMountTable bool
	// Locked is false when the mapper node could not be closed.
	Locked   bool
	Warnings []*Error
}

// Unmount unmounts req.MountPoint and locks the mapper node behind it.
// Failures after the unmount are reported as warnings.
func (o *Orchestrator) Unmount(req UnmountRequest) (*UnmountResult, error) {
	if err := system.CheckPath(req.MountPoint); err != nil {
		return nil, newError(InvalidArgument, req.MountPoint, err)
	}
	mountPoint := path.Clean(req.MountPoint)
	res := &UnmountResult{MountPoint: mountPoint}

	// Steps 1-2: record first, then the mount table
	rec, hasRecord, err := o.resolve(mountPoint, res)
	if err != nil {
		return nil, err
	}
	log := o.log.With().Str("mapper", res.MapperID).Str("mount_point", mountPoint).Logger()

	// Step 3. A record whose mount is already gone is not unmounted again.
	skipUnmount := false
	if hasRecord {
		mounted, err := o.table.IsMounted(mountPoint)
		if err == nil && !mounted {
			skipUnmount = true
			res.Warnings = append(res.Warnings, newError(StaleRecord, mountPoint, errors.New("mount point was already unmounted")))
			log.Info().Msg("mount point already unmounted")
		}
	}
	if !skipUnmount {
		if err := o.mounter.Unmount(mountPoint, volume.UnmountOptions{Force: req.Force}); err != nil {
			return nil, newError(UnmountFailed, mountPoint, err)
		}
		log.Debug().Bool("force", req.Force).Msg("filesystem unmounted")
	}

	// Step 4: lock
	if skipUnmount && !o.locker.IsActive(res.MapperID) {
		res.Locked = true
	} else if err := o.locker.Lock(res.MapperID); err != nil {
		log.Warn().Err(err).Msg("failed to lock volume")
		res.Warnings = append(res.Warnings, newError(LockFailed, res.MapperID, err))
		// Keep the record so a retry can still find the mapper.
		return res, nil
	} else {
		res.Locked = true
		log.Debug().Msg("volume locked")
	}

	// Step 5: forget the record
	if hasRecord {
		if err := o.store.Remove(rec.MountPoint); err != nil {
			log.Warn().Err(err).Msg("failed to remove mount record")
			res.Warnings = append(res.Warnings, newError(RecordRemoveFailed, mountPoint, err))
		}
	}
	return res, nil
}

// resolve finds the mapper behind mountPoint, first from the state store
// and then from the live mount table.
func (o *Orchestrator) resolve(mountPoint string, res *UnmountResult) (state.Record, bool, error) {
	rec, err := o.store.Get(mountPoint)
	if err == nil {
		res.MapperID = rec.MapperID
		return rec, true, nil
	}
	if !errors.Is(err, state.ErrNotFound) {
		o.log.Warn().Err(err).Str("mount_point", mountPoint).Msg("state store unusable, falling back to mount table")
	}

	mapperID, tableErr := o.table.ResolveMapper(mountPoint)
	if tableErr != nil {
		return state.Record{}, false, newError(NotMounted, mountPoint, tableErr)
	}
	o.log.Debug().Str("mapper", mapperID).Str("mount_point", mountPoint).Msg("resolved mapper from mount table")
	res.MapperID = mapperID
	res.FromMountTable = true

	// A corrupt record under this key would block the next mount.
	if errors.Is(err, state.ErrCorrupt) {
		return state.Record{MountPoint: mountPoint}, true, nil
	}
	return state.Record{}, false, nil
}
