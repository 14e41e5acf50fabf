// Package workflow sequences the unlock, mount, unmount and lock steps for
// LUKS volumes and keeps the state store in step with the system.
package workflow

import (
	"iter"

	"github.com/jonboulle/clockwork"
	"github.com/nace/luksctl/internal/state"
	"github.com/nace/luksctl/internal/system"
	"github.com/nace/luksctl/internal/volume"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// VolumeLocker opens and closes encrypted volumes.
type VolumeLocker interface {
	IsEncryptedVolume(device string) (bool, error)
	VolumeUUID(device string) (string, error)
	Unlock(device, mapperID string, passphrase *system.SecureBytes) error
	Lock(mapperID string) error
	IsActive(mapperID string) bool
}

// Mounter mounts and unmounts filesystems.
type Mounter interface {
	Mount(device, mountPoint string, opts volume.MountOptions) error
	Unmount(mountPoint string, opts volume.UnmountOptions) error
}

// MountTable is a read-only view of the live mount table.
type MountTable interface {
	IsMounted(mountPoint string) (bool, error)
	ResolveMapper(mountPoint string) (string, error)
	Mounts() ([]volume.MountEntry, error)
}

// StateStore persists mount records.
type StateStore interface {
	Ready() error
	Put(rec state.Record) error
	Get(mountPoint string) (state.Record, error)
	Remove(mountPoint string) error
	List() iter.Seq2[state.Record, error]
}

// PassphraseFunc supplies the passphrase for an unlock. It is only called
// when an unlock is actually attempted.
type PassphraseFunc func() (*system.SecureBytes, error)

// Deps are the collaborators of an Orchestrator. Fs is used for mount
// point directories only.
type Deps struct {
	Locker  VolumeLocker
	Mounter Mounter
	Table   MountTable
	Store   StateStore
	Fs      afero.Fs
	Policy  volume.Policy
	Clock   clockwork.Clock
	Log     zerolog.Logger
}

// Orchestrator runs the mount and unmount workflows.
type Orchestrator struct {
	locker  VolumeLocker
	mounter Mounter
	table   MountTable
	store   StateStore
	fs      afero.Fs
	policy  volume.Policy
	clock   clockwork.Clock
	log     zerolog.Logger
}

// New creates an Orchestrator. A nil Fs or Clock falls back to the real
// filesystem and wall clock.
func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		locker:  d.Locker,
		mounter: d.Mounter,
		table:   d.Table,
		store:   d.Store,
		fs:      d.Fs,
		policy:  d.Policy,
		clock:   d.Clock,
		log:     d.Log,
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	return o
}
