package volume

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nace/luksctl/internal/system"
)

const (
	maxFSTypeLen  = 32
	maxOptionsLen = 1024
)

// ErrInvalidOptions is returned for mount options rejected by the policy.
var ErrInvalidOptions = errors.New("invalid mount options")

// DefaultAllowedFSTypes lists the filesystems accepted as a type hint.
var DefaultAllowedFSTypes = []string{
	"ext2", "ext3", "ext4", "xfs", "btrfs", "f2fs", "ntfs", "ntfs3",
	"vfat", "exfat", "iso9660", "udf", "hfsplus", "jfs", "reiserfs",
}

// DefaultMountOptions are prepended to every mount.
var DefaultMountOptions = []string{"nosuid", "nodev"}

// riskyOptions re-enable what the defaults switch off; they are allowed
// with a warning.
var riskyOptions = []string{"suid", "dev", "exec"}

// MountOptions are the effective options of one mount.
type MountOptions struct {
	ReadOnly bool   `json:"read_only"`
	FSType   string `json:"fs_type,omitempty"`
	Extra    string `json:"extra_options,omitempty"`
}

// UnmountOptions control how a mount point is detached.
type UnmountOptions struct {
	Force bool
}

// Policy restricts what the mount manager passes to mount(8).
type Policy struct {
	DefaultOptions []string
	AllowedFSTypes []string
	// LazyOnForce allows umount -l as the last forced-unmount attempt.
	LazyOnForce bool
}

// DefaultPolicy returns the policy used when no configuration overrides it.
func DefaultPolicy() Policy {
	return Policy{
		DefaultOptions: slices.Clone(DefaultMountOptions),
		AllowedFSTypes: slices.Clone(DefaultAllowedFSTypes),
		LazyOnForce:    true,
	}
}

// Validate checks opts against the policy. Options that weaken the secure
// defaults are reported as warnings rather than errors.
func (p Policy) Validate(opts MountOptions) (warnings []string, err error) {
	if opts.FSType != "" {
		if err := p.validateFSType(opts.FSType); err != nil {
			return nil, err
		}
	}

	if strings.ContainsRune(opts.Extra, 0) {
		return nil, fmt.Errorf("%w: options contain a NUL byte", ErrInvalidOptions)
	}
	if len(opts.Extra) > maxOptionsLen {
		return nil, fmt.Errorf("%w: options longer than %d bytes", ErrInvalidOptions, maxOptionsLen)
	}

	for _, opt := range system.ParseOptionList(opts.Extra) {
		if strings.ContainsAny(opt, ";&|$`\n\r\\\"'") {
			return nil, fmt.Errorf("%w: option %q contains forbidden characters", ErrInvalidOptions, opt)
		}
		name := system.OptionName(opt)
		for _, risky := range riskyOptions {
			if strings.EqualFold(name, risky) {
				warnings = append(warnings, name)
			}
		}
	}

	return warnings, nil
}

func (p Policy) validateFSType(fsType string) error {
	if strings.ContainsAny(fsType, "/\x00") {
		return fmt.Errorf("%w: invalid filesystem type %q", ErrInvalidOptions, fsType)
	}
	if len(fsType) > maxFSTypeLen {
		return fmt.Errorf("%w: filesystem type longer than %d bytes", ErrInvalidOptions, maxFSTypeLen)
	}
	if !slices.Contains(p.AllowedFSTypes, strings.ToLower(fsType)) {
		return fmt.Errorf("%w: unsupported filesystem type %q (allowed: %s)",
			ErrInvalidOptions, fsType, strings.Join(p.AllowedFSTypes, ", "))
	}
	return nil
}

// OptionString returns the -o argument for opts: policy defaults first,
// then ro, then the caller's extra options verbatim.
func (p Policy) OptionString(opts MountOptions) string {
	all := slices.Clone(p.DefaultOptions)
	if opts.ReadOnly {
		all = append(all, "ro")
	}
	all = append(all, system.ParseOptionList(opts.Extra)...)
	return strings.Join(all, ",")
}

// MountManager handles filesystem mount operations
type MountManager struct {
	runner Runner
	policy Policy
}

// NewMountManager creates a new mount manager
func NewMountManager(runner Runner, policy Policy) *MountManager {
	return &MountManager{
		runner: runner,
		policy: policy,
	}
}

// Mount mounts a device to an existing mount point
func (m *MountManager) Mount(device, mountPoint string, opts MountOptions) error {
	if _, err := m.policy.Validate(opts); err != nil {
		return err
	}

	var args []string
	if opts.FSType != "" {
		args = append(args, "-t", strings.ToLower(opts.FSType))
	}
	if optString := m.policy.OptionString(opts); optString != "" {
		args = append(args, "-o", optString)
	}
	args = append(args, device, mountPoint)

	if _, err := m.runner.RunOutput("mount", args...); err != nil {
		return fmt.Errorf("failed to mount %s to %s: %w", device, mountPoint, err)
	}
	return nil
}

// Unmount unmounts a mount point. A forced unmount escalates from a plain
// umount to umount -f and finally, when the policy allows it, to a lazy
// umount -l that detaches the mount point while I/O drains.
func (m *MountManager) Unmount(mountPoint string, opts UnmountOptions) error {
	_, err := m.runner.RunOutput("umount", mountPoint)
	if err == nil {
		return nil
	}
	if !opts.Force {
		return fmt.Errorf("failed to unmount %s: %w", mountPoint, err)
	}

	if _, err = m.runner.RunOutput("umount", "-f", mountPoint); err == nil {
		return nil
	}
	if !m.policy.LazyOnForce {
		return fmt.Errorf("failed to force unmount %s: %w", mountPoint, err)
	}

	if _, err = m.runner.RunOutput("umount", "-l", mountPoint); err != nil {
		return fmt.Errorf("failed to lazily unmount %s: %w", mountPoint, err)
	}
	return nil
}
