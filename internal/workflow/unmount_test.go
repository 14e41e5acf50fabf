package workflow

import (
	"errors"
	"testing"

	"github.com/nace/luksctl/internal/state"
	"github.com/nace/luksctl/internal/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmountHappyPath(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	res, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"umount /mnt/enc force=false",
		"lock " + testMapper,
	}, h.j.calls)
	assert.Equal(t, testMapper, res.MapperID)
	assert.True(t, res.Locked)
	assert.False(t, res.FromMountTable)
	assert.Empty(t, res.Warnings)

	_, err = h.store.Get(testMount)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestUnmountFallsBackToMountTable(t *testing.T) {
	h := newHarness(t)
	h.locker.active[testMapper] = true
	h.table.mounts[testMount] = volume.MapperPath(testMapper)

	res, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)
	assert.True(t, res.FromMountTable)
	assert.Equal(t, testMapper, res.MapperID)
	assert.Equal(t, 1, h.j.count("lock "+testMapper))
}

func TestUnmountFallsBackWhenStoreUnavailable(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.store.getErr = state.ErrUnavailable

	res, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)
	assert.True(t, res.FromMountTable)
	assert.True(t, res.Locked)
}

func TestUnmountCorruptRecordIsCleared(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.store.getErr = state.ErrCorrupt

	_, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)

	h.store.getErr = nil
	_, err = h.store.Get(testMount)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestUnmountNotMounted(t *testing.T) {
	h := newHarness(t)

	_, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	requireKind(t, err, NotMounted)
	assert.Empty(t, h.j.calls)
}

func TestUnmountIgnoresForeignMounts(t *testing.T) {
	h := newHarness(t)
	h.table.mounts[testMount] = "/dev/sdc1"

	_, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	requireKind(t, err, NotMounted)
	assert.Empty(t, h.j.calls)
}

func TestUnmountBusyKeepsRecord(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.mounter.busy = true

	_, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	requireKind(t, err, UnmountFailed)
	assert.ErrorIs(t, err, errBusy)
	assert.Zero(t, h.j.count("lock "))

	_, err = h.store.Get(testMount)
	assert.NoError(t, err)
}

func TestUnmountForcedUnderBusy(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.mounter.busy = true

	res, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount, Force: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"umount /mnt/enc force=true",
		"lock " + testMapper,
	}, h.j.calls)
	assert.Empty(t, res.Warnings)

	_, err = h.store.Get(testMount)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestUnmountLockFailureIsWarning(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.locker.lockErr = errors.New("device busy")

	res, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)
	assert.False(t, res.Locked)
	assert.Equal(t, []Kind{LockFailed}, kinds(res.Warnings))

	rec, err := h.store.Get(testMount)
	require.NoError(t, err, "record is kept for a retry")
	assert.Equal(t, testMapper, rec.MapperID)
}

func TestUnmountRetryAfterLockFailure(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.locker.lockErr = errors.New("device busy")

	_, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)

	h.locker.lockErr = nil
	res, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)
	assert.True(t, res.Locked)
	assert.Equal(t, []Kind{StaleRecord}, kinds(res.Warnings))
	assert.Equal(t, 1, h.j.count("umount"))

	_, err = h.store.Get(testMount)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestUnmountRecordRemoveFailureIsWarning(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.store.removeErr = errors.New("read-only file system")

	res, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)
	assert.True(t, res.Locked)
	assert.Equal(t, []Kind{RecordRemoveFailed}, kinds(res.Warnings))
}

func TestUnmountStaleRecordSkipsUnmount(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	delete(h.table.mounts, testMount)
	delete(h.locker.active, testMapper)

	res, err := h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)
	assert.Empty(t, h.j.calls)
	assert.Equal(t, []Kind{StaleRecord}, kinds(res.Warnings))

	_, err = h.store.Get(testMount)
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestUnmountRejectsRelativePath(t *testing.T) {
	h := newHarness(t)

	_, err := h.orch.Unmount(UnmountRequest{MountPoint: "mnt/enc"})
	requireKind(t, err, InvalidArgument)
}

func TestMountThenUnmount(t *testing.T) {
	h := newHarness(t)

	_, err := h.orch.Mount(MountRequest{Device: testDevice, MountPoint: testMount}, h.passphrase())
	require.NoError(t, err)
	_, err = h.orch.Unmount(UnmountRequest{MountPoint: testMount})
	require.NoError(t, err)

	assert.Empty(t, h.locker.active)
	assert.Empty(t, h.table.mounts)
	for _, err := range h.store.List() {
		t.Fatalf("unexpected record or error: %v", err)
	}
}
