package workflow

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/nace/luksctl/internal/state"
	"github.com/nace/luksctl/internal/system"
	"github.com/nace/luksctl/internal/volume"
)

const mountPointPerm = 0o755

// MountRequest describes one attach-and-mount operation.
type MountRequest struct {
	Device     string
	MountPoint string
	Options    volume.MountOptions
	// Mkdir creates the mount point (and only it) when it is missing.
	Mkdir bool
}

// MountResult describes a successful mount. Warnings carry conditions that
// did not stop the mount, such as a failure to persist the record.
type MountResult struct {
	Record   state.Record
	Created  bool
	Reused   bool
	Warnings []*Error
}

// Mount unlocks req.Device and mounts it on req.MountPoint. Nothing is
// unlocked before every precondition has been checked, and a failed mount
// locks the volume again before returning.
func (o *Orchestrator) Mount(req MountRequest, passphrase PassphraseFunc) (*MountResult, error) {
	res := &MountResult{}

	if err := system.CheckPath(req.Device); err != nil {
		return nil, newError(InvalidArgument, req.Device, err)
	}
	if err := system.CheckPath(req.MountPoint); err != nil {
		return nil, newError(InvalidArgument, req.MountPoint, err)
	}
	mountPoint := path.Clean(req.MountPoint)

	risky, err := o.policy.Validate(req.Options)
	if err != nil {
		return nil, newError(InvalidArgument, mountPoint, err)
	}
	for _, opt := range risky {
		res.Warnings = append(res.Warnings, newError(RiskyMountOption, mountPoint, errors.New(opt)))
	}

	// Step 1: one live record per mount point.
	if err := o.checkMountPointFree(mountPoint, res); err != nil {
		return nil, err
	}

	// Step 2: the device must carry a LUKS header.
	isLuks, err := o.locker.IsEncryptedVolume(req.Device)
	if err != nil {
		return nil, newError(DeviceNotLuks, req.Device, err)
	}
	if !isLuks {
		return nil, newError(DeviceNotLuks, req.Device, volume.ErrNotLUKS)
	}

	// Step 3: derive the mapper name
	mapperID, err := volume.DeriveMapperID(o.locker, req.Device)
	if err != nil {
		return nil, newError(DeviceNotLuks, req.Device, err)
	}
	log := o.log.With().Str("device", req.Device).Str("mapper", mapperID).Str("mount_point", mountPoint).Logger()

	// Step 4: the target must exist before anything is unlocked.
	created, err := o.prepareMountPoint(mountPoint, req.Mkdir)
	if err != nil {
		return nil, err
	}
	res.Created = created

	// Step 5: unlock, unless an earlier session left the mapper open
	rollback := system.NewCleanupStack()
	if o.locker.IsActive(mapperID) {
		if other, ok := o.mapperInUse(mapperID, mountPoint); ok {
			return nil, newError(UnlockFailed, req.Device, fmt.Errorf("%s is already in use at %s", mapperID, other))
		}
		log.Info().Msg("volume already unlocked, reusing mapper node")
		res.Reused = true
	} else {
		if err := o.unlock(req.Device, mapperID, passphrase); err != nil {
			return nil, err
		}
		log.Debug().Msg("volume unlocked")
		rollback.Add("lock "+mapperID, func() error {
			return o.locker.Lock(mapperID)
		})
	}

	// Step 6: mount, locking again on failure
	if err := o.mounter.Mount(volume.MapperPath(mapperID), mountPoint, req.Options); err != nil {
		wfErr := newError(MountFailed, mountPoint, err)
		log.Debug().Err(err).Strs("rollback", rollback.Names()).Msg("mount failed, rolling back")
		if rbErr := rollback.Execute(); rbErr != nil {
			log.Error().Err(rbErr).Msg("rollback failed, volume left unlocked")
			wfErr.RollbackErr = rbErr
		}
		return nil, wfErr
	}
	rollback.Clear()
	log.Debug().Msg("filesystem mounted")

	// Step 7: the mount is live; losing the record only costs tracking.
	res.Record = state.Record{
		MountPoint:   mountPoint,
		MapperID:     mapperID,
		SourceDevice: req.Device,
		Options:      req.Options,
		MountedAt:    o.clock.Now().UTC(),
	}
	if err := o.store.Put(res.Record); err != nil {
		log.Warn().Err(err).Msg("failed to persist mount record")
		res.Warnings = append(res.Warnings, newError(StatePersistFailed, mountPoint, err))
	}

	return res, nil
}

// checkMountPointFree rejects mount points that already carry a live
// record or a mount. Records left behind by a crash are dropped.
func (o *Orchestrator) checkMountPointFree(mountPoint string, res *MountResult) error {
	if err := o.store.Ready(); err != nil {
		return newError(StoreUnavailable, mountPoint, err)
	}

	mounted, err := o.table.IsMounted(mountPoint)
	if err != nil {
		o.log.Debug().Err(err).Str("mount_point", mountPoint).Msg("mount table unavailable")
		mounted = false
	}

	rec, err := o.store.Get(mountPoint)
	switch {
	case err == nil:
		if mounted || o.locker.IsActive(rec.MapperID) {
			return newError(AlreadyMounted, mountPoint, fmt.Errorf("tracked as %s from %s", rec.MapperID, rec.SourceDevice))
		}
		if err := o.dropStaleRecord(mountPoint); err != nil {
			return err
		}
		res.Warnings = append(res.Warnings, newError(StaleRecord, mountPoint, fmt.Errorf("%s is no longer active", rec.MapperID)))
	case errors.Is(err, state.ErrCorrupt):
		if mounted {
			return newError(AlreadyMounted, mountPoint, err)
		}
		if err := o.dropStaleRecord(mountPoint); err != nil {
			return err
		}
		res.Warnings = append(res.Warnings, newError(StaleRecord, mountPoint, err))
	case errors.Is(err, state.ErrNotFound):
	default:
		return newError(StoreUnavailable, mountPoint, err)
	}

	if mounted {
		return newError(AlreadyMounted, mountPoint, errors.New("mount point is in use"))
	}
	return nil
}

// mapperInUse returns another mount point that a record or a live mount
// ties to mapperID. An open mapper is only reused when nothing claims it.
func (o *Orchestrator) mapperInUse(mapperID, mountPoint string) (string, bool) {
	for rec, err := range o.store.List() {
		if err != nil {
			continue
		}
		if rec.MapperID == mapperID && path.Clean(rec.MountPoint) != mountPoint {
			return rec.MountPoint, true
		}
	}

	mounts, err := o.table.Mounts()
	if err != nil {
		o.log.Debug().Err(err).Str("mapper", mapperID).Msg("mount table unavailable")
		return "", false
	}
	for _, m := range mounts {
		if id, ok := volume.MapperFromDevice(m.Device); ok && id == mapperID && m.MountPoint != mountPoint {
			return m.MountPoint, true
		}
	}
	return "", false
}

func (o *Orchestrator) dropStaleRecord(mountPoint string) error {
	o.log.Info().Str("mount_point", mountPoint).Msg("removing stale mount record")
	if err := o.store.Remove(mountPoint); err != nil {
		return newError(StoreUnavailable, mountPoint, err)
	}
	return nil
}

func (o *Orchestrator) prepareMountPoint(mountPoint string, mkdir bool) (created bool, err error) {
	info, err := o.fs.Stat(mountPoint)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, newError(MountPointCreationFailed, mountPoint, errors.New("not a directory"))
		}
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, newError(MountPointCreationFailed, mountPoint, err)
	case !mkdir:
		return false, newError(MountPointCreationFailed, mountPoint, fs.ErrNotExist)
	}

	parent, err := o.fs.Stat(path.Dir(mountPoint))
	if err != nil || !parent.IsDir() {
		return false, newError(MountPointCreationFailed, mountPoint, fmt.Errorf("parent directory unavailable: %w", fs.ErrNotExist))
	}
	if err := o.fs.Mkdir(mountPoint, mountPointPerm); err != nil {
		return false, newError(MountPointCreationFailed, mountPoint, err)
	}
	if err := o.fs.Chmod(mountPoint, mountPointPerm); err != nil {
		return true, newError(MountPointCreationFailed, mountPoint, err)
	}
	o.log.Debug().Str("mount_point", mountPoint).Msg("created mount point")
	return true, nil
}

func (o *Orchestrator) unlock(device, mapperID string, passphrase PassphraseFunc) error {
	if passphrase == nil {
		return newError(UnlockFailed, device, errors.New("no passphrase source"))
	}
	pass, err := passphrase()
	if err != nil {
		return newError(UnlockFailed, device, fmt.Errorf("failed to read passphrase: %w", err))
	}
	defer pass.Zeroize()

	if err := o.locker.Unlock(device, mapperID, pass); err != nil {
		return newError(UnlockFailed, device, err)
	}
	return nil
}
