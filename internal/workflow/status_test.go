package workflow

import (
	"testing"

	"github.com/nace/luksctl/internal/state"
	"github.com/nace/luksctl/internal/volume"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.table.mounts["/mnt/other"] = "/dev/mapper/luks-cafebabe-0000-4000-8000-000000000002"
	h.table.mounts["/boot"] = "/dev/nvme0n1p1"

	got, warnings, err := h.orch.Status()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, got, 2)

	assert.Equal(t, testMount, got[0].MountPoint)
	assert.True(t, got[0].Tracked)
	assert.True(t, got[0].Active)
	assert.True(t, got[0].Mounted)
	assert.False(t, got[0].Stale())

	assert.Equal(t, "/mnt/other", got[1].MountPoint)
	assert.False(t, got[1].Tracked)
	assert.Equal(t, "luks-cafebabe-0000-4000-8000-000000000002", got[1].MapperID)
}

func TestStatusReportsStale(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	delete(h.table.mounts, testMount)
	delete(h.locker.active, testMapper)

	got, _, err := h.orch.Status()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Stale())
}

func TestStatusNamesCorruptRecord(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	require.NoError(t, afero.WriteFile(h.fs, stateDir+"/mnt-broken.json", []byte("{"), 0o600))

	got, warnings, err := h.orch.Status()
	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, StaleRecord, warnings[0].Kind)
	assert.Equal(t, "/mnt/broken", warnings[0].Path)
	assert.ErrorIs(t, warnings[0], state.ErrCorrupt)

	_, warnings, err = h.orch.Prune()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "/mnt/broken", warnings[0].Path)
}

func TestPrune(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	require.NoError(t, h.store.Put(state.Record{
		MountPoint:   "/mnt/gone",
		MapperID:     "luks-cafebabe-0000-4000-8000-000000000002",
		SourceDevice: "/dev/sdb1",
	}))

	pruned, warnings, err := h.orch.Prune()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"/mnt/gone"}, pruned)

	_, err = h.store.Get(testMount)
	assert.NoError(t, err)
	_, err = h.store.Get("/mnt/gone")
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestPruneKeepsActiveMapper(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	delete(h.table.mounts, testMount)

	pruned, _, err := h.orch.Prune()
	require.NoError(t, err)
	assert.Empty(t, pruned)
}

func TestPruneUnavailableStore(t *testing.T) {
	h := newHarness(t)
	h.store.readyErr = state.ErrUnavailable

	_, _, err := h.orch.Prune()
	requireKind(t, err, StoreUnavailable)
}

func TestPruneSkipsWhenMountTableUnreadable(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	delete(h.locker.active, testMapper)
	h.table.err = volume.ErrNotMounted

	pruned, _, err := h.orch.Prune()
	require.NoError(t, err)
	assert.Empty(t, pruned)
}
