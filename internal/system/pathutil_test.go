package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "absolute", path: "/mnt/enc"},
		{name: "root", path: "/"},
		{name: "dots in name", path: "/mnt/my..vol"},
		{name: "empty", path: "", wantErr: true},
		{name: "relative", path: "mnt/enc", wantErr: true},
		{name: "traversal", path: "/mnt/../etc", wantErr: true},
		{name: "nul byte", path: "/mnt/a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPath(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateDevicePathRejectsNonDev(t *testing.T) {
	err := ValidateDevicePath("/tmp/disk.img")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestValidateDevicePathMissing(t *testing.T) {
	err := ValidateDevicePath("/dev/does-not-exist-luksctl")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestValidateDevicePathCharDevice(t *testing.T) {
	if _, err := os.Stat("/dev/null"); err != nil {
		t.Skip("/dev/null not available")
	}
	err := ValidateDevicePath("/dev/null")
	require.ErrorIs(t, err, ErrNotBlockDevice)
}

func TestCanonicalPathResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.Symlink(target, link))

	want, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	assert.Equal(t, want, CanonicalPath(link))
}

func TestCanonicalPathMissingFallsBackToClean(t *testing.T) {
	assert.Equal(t, "/nonexistent/luksctl/mnt", CanonicalPath("/nonexistent//luksctl/mnt/"))
}
