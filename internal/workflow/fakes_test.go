package workflow

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nace/luksctl/internal/state"
	"github.com/nace/luksctl/internal/system"
	"github.com/nace/luksctl/internal/volume"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	testDevice = "/dev/sda1"
	testUUID   = "deadbeef-0000-4000-8000-000000000001"
	testMapper = "luks-" + testUUID
	testMount  = "/mnt/enc"
	stateDir   = "/run/luksctl"
)

var errBusy = errors.New("target is busy")

// journal records collaborator calls in order across all fakes.
type journal struct {
	calls []string
}

func (j *journal) add(format string, args ...any) {
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

func (j *journal) count(prefix string) int {
	n := 0
	for _, c := range j.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type fakeLocker struct {
	j         *journal
	uuids     map[string]string
	notLuks   map[string]bool
	active    map[string]bool
	unlockErr error
	lockErr   error
	lastPass  string
}

func (f *fakeLocker) IsEncryptedVolume(device string) (bool, error) {
	f.j.add("isLuks %s", device)
	return !f.notLuks[device], nil
}

func (f *fakeLocker) VolumeUUID(device string) (string, error) {
	u, ok := f.uuids[device]
	if !ok {
		return "", errors.New("no uuid")
	}
	return u, nil
}

func (f *fakeLocker) Unlock(device, mapperID string, pass *system.SecureBytes) error {
	f.j.add("unlock %s %s", device, mapperID)
	f.lastPass = string(pass.Bytes())
	if f.unlockErr != nil {
		return f.unlockErr
	}
	f.active[mapperID] = true
	return nil
}

func (f *fakeLocker) Lock(mapperID string) error {
	f.j.add("lock %s", mapperID)
	if f.lockErr != nil {
		return f.lockErr
	}
	delete(f.active, mapperID)
	return nil
}

func (f *fakeLocker) IsActive(mapperID string) bool {
	return f.active[mapperID]
}

type fakeMounter struct {
	j        *journal
	table    *fakeTable
	mountErr error
	// busy fails unmounts that are not forced.
	busy       bool
	unmountErr error
	lastOpts   volume.MountOptions
}

func (f *fakeMounter) Mount(device, mountPoint string, opts volume.MountOptions) error {
	f.j.add("mount %s %s", device, mountPoint)
	f.lastOpts = opts
	if f.mountErr != nil {
		return f.mountErr
	}
	f.table.mounts[mountPoint] = device
	return nil
}

func (f *fakeMounter) Unmount(mountPoint string, opts volume.UnmountOptions) error {
	f.j.add("umount %s force=%t", mountPoint, opts.Force)
	if f.unmountErr != nil {
		return f.unmountErr
	}
	if f.busy && !opts.Force {
		return errBusy
	}
	delete(f.table.mounts, mountPoint)
	return nil
}

type fakeTable struct {
	mounts map[string]string
	err    error
}

func (f *fakeTable) IsMounted(mountPoint string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.mounts[mountPoint]
	return ok, nil
}

func (f *fakeTable) ResolveMapper(mountPoint string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	dev, ok := f.mounts[mountPoint]
	if !ok {
		return "", volume.ErrNotMounted
	}
	id, ok := volume.MapperFromDevice(dev)
	if !ok {
		return "", volume.ErrNotMounted
	}
	return id, nil
}

func (f *fakeTable) Mounts() ([]volume.MountEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []volume.MountEntry
	for mp, dev := range f.mounts {
		if _, ok := volume.MapperFromDevice(dev); ok {
			out = append(out, volume.MountEntry{Device: dev, MountPoint: mp, FSType: "ext4"})
		}
	}
	return out, nil
}

// faultyStore wraps a real store and injects failures per operation.
type faultyStore struct {
	*state.Store
	readyErr  error
	putErr    error
	getErr    error
	removeErr error
}

func (s *faultyStore) Ready() error {
	if s.readyErr != nil {
		return s.readyErr
	}
	return s.Store.Ready()
}

func (s *faultyStore) Put(rec state.Record) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.Store.Put(rec)
}

func (s *faultyStore) Get(mountPoint string) (state.Record, error) {
	if s.getErr != nil {
		return state.Record{}, s.getErr
	}
	return s.Store.Get(mountPoint)
}

func (s *faultyStore) Remove(mountPoint string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	return s.Store.Remove(mountPoint)
}

func (s *faultyStore) List() iter.Seq2[state.Record, error] {
	return s.Store.List()
}

type harness struct {
	j       *journal
	fs      afero.Fs
	locker  *fakeLocker
	mounter *fakeMounter
	table   *fakeTable
	store   *faultyStore
	clock   *clockwork.FakeClock
	orch    *Orchestrator
}

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	j := &journal{}
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testMount, 0o755))

	table := &fakeTable{mounts: map[string]string{}}
	h := &harness{
		j:  j,
		fs: fs,
		locker: &fakeLocker{
			j:       j,
			uuids:   map[string]string{testDevice: testUUID},
			notLuks: map[string]bool{},
			active:  map[string]bool{},
		},
		mounter: &fakeMounter{j: j, table: table},
		table:   table,
		store:   &faultyStore{Store: state.NewStore(fs, stateDir)},
		clock:   clockwork.NewFakeClockAt(testNow),
	}
	h.orch = New(Deps{
		Locker:  h.locker,
		Mounter: h.mounter,
		Table:   h.table,
		Store:   h.store,
		Fs:      fs,
		Policy:  volume.DefaultPolicy(),
		Clock:   h.clock,
		Log:     zerolog.Nop(),
	})
	return h
}

func (h *harness) passphrase() PassphraseFunc {
	return func() (*system.SecureBytes, error) {
		h.j.add("prompt")
		return system.NewSecureBytes([]byte("hunter2")), nil
	}
}

// seed puts a live mount of testDevice at testMount in place.
func (h *harness) seed(t *testing.T) {
	t.Helper()
	h.locker.active[testMapper] = true
	h.table.mounts[testMount] = volume.MapperPath(testMapper)
	require.NoError(t, h.store.Store.Put(state.Record{
		MountPoint:   testMount,
		MapperID:     testMapper,
		SourceDevice: testDevice,
		MountedAt:    testNow,
	}))
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}

func kinds(ws []*Error) []Kind {
	out := make([]Kind, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Kind)
	}
	return out
}
