package system

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DiskUsage returns the total and used bytes of the filesystem mounted at
// mountPoint.
func DiskUsage(mountPoint string) (size, used uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(mountPoint, &st); err != nil {
		return 0, 0, fmt.Errorf("statfs %s: %w", mountPoint, err)
	}
	bsize := uint64(st.Bsize)
	size = st.Blocks * bsize
	used = (st.Blocks - st.Bfree) * bsize
	return size, used, nil
}
