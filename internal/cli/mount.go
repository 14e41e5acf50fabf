package cli

import (
	"errors"
	"path/filepath"

	"github.com/nace/luksctl/internal/i18n"
	"github.com/nace/luksctl/internal/system"
	"github.com/nace/luksctl/internal/ui"
	"github.com/nace/luksctl/internal/volume"
	"github.com/nace/luksctl/internal/workflow"
	"github.com/spf13/cobra"
)

// MountCommand handles unlocking and mounting a LUKS device
type MountCommand struct {
	ctx           *GlobalContext
	mkdir         bool
	readonly      bool
	fsType        string
	options       string
	passwordStdin bool
}

// NewMountCommand creates the mount command
func NewMountCommand(ctx *GlobalContext) *cobra.Command {
	cmd := &MountCommand{ctx: ctx}

	cobraCmd := &cobra.Command{
		Use:   "mount [flags] DEVICE MOUNTPOINT",
		Short: "Unlock and mount a LUKS device",
		Long: `Open a LUKS encrypted block device and mount its filesystem.

The device is opened as /dev/mapper/luks-<uuid>. If mounting fails the
device is closed again. nosuid and nodev are always added to the options.`,
		Args: exactArgs(2),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVar(&cmd.mkdir, "mkdir", false, "Create the mount point if it does not exist")
	cobraCmd.Flags().BoolVarP(&cmd.readonly, "ro", "r", false, "Mount as read-only")
	cobraCmd.Flags().StringVarP(&cmd.fsType, "fs-type", "t", "", "Filesystem type hint passed to mount")
	cobraCmd.Flags().StringVarP(&cmd.options, "options", "o", "", "Extra comma-separated mount options")
	cobraCmd.Flags().BoolVar(&cmd.passwordStdin, "password-stdin", false, "Read password from stdin (for automation)")

	return cobraCmd
}

// Run executes the mount command
func (c *MountCommand) Run(cmd *cobra.Command, args []string) error {
	device := args[0]
	if err := c.ctx.requireRoot(device); err != nil {
		return err
	}

	if err := c.ctx.CheckDependencies(); err != nil {
		return err
	}

	if err := c.ctx.ValidateDevice(device); err != nil {
		kind := workflow.DeviceNotLuks
		if errors.Is(err, system.ErrInvalidPath) {
			kind = workflow.InvalidArgument
		}
		return &workflow.Error{Kind: kind, Path: device, Err: err}
	}

	// Records are keyed by the canonical path, as unmount resolves it.
	absPath, err := filepath.Abs(args[1])
	if err != nil {
		return &workflow.Error{Kind: workflow.InvalidArgument, Path: args[1], Err: err}
	}
	mountPoint := c.ctx.CanonicalPath(absPath)
	c.ctx.Logger.Debug("Resolved mount point: %s", mountPoint)

	req := workflow.MountRequest{
		Device:     device,
		MountPoint: mountPoint,
		Mkdir:      c.mkdir,
		Options: volume.MountOptions{
			ReadOnly: c.readonly,
			FSType:   c.fsType,
			Extra:    c.options,
		},
	}

	tr := c.ctx.Tr
	c.ctx.Logger.Info("%s", tr.T(i18n.MountOpening, device))
	res, err := c.ctx.Orchestrator.Mount(req, c.passphrase(device))
	if err != nil {
		return err
	}

	if res.Created {
		c.ctx.Logger.Info("%s", tr.T(i18n.MountCreatedDir, mountPoint))
	}
	if res.Reused {
		c.ctx.Logger.Info("%s", tr.T(i18n.MountReusingMapper, res.Record.MapperID))
	} else {
		c.ctx.Logger.Debug("%s", tr.T(i18n.MountUsingMapper, res.Record.MapperID))
	}
	c.ctx.ReportWarnings(res.Warnings)

	c.ctx.Logger.Success("%s", tr.T(i18n.MountSuccess))
	mode := tr.T(i18n.MountModeReadWrite)
	if c.readonly {
		mode = tr.T(i18n.MountModeReadOnly)
	}
	c.ctx.Logger.Info("  %s: %s", tr.T(i18n.MountLabelDevice), device)
	c.ctx.Logger.Info("  %s: %s", tr.T(i18n.MountLabelPoint), mountPoint)
	c.ctx.Logger.Info("  %s: %s", tr.T(i18n.MountLabelMapper), volume.MapperPath(res.Record.MapperID))
	c.ctx.Logger.Info("  %s: %s", tr.T(i18n.MountLabelMode), mode)

	return nil
}

func (c *MountCommand) passphrase(device string) workflow.PassphraseFunc {
	if c.passwordStdin {
		return func() (*system.SecureBytes, error) {
			return ui.ReadPassword(c.ctx.Stdin)
		}
	}
	return func() (*system.SecureBytes, error) {
		return c.ctx.PromptPassword(c.ctx.Tr.T(i18n.PromptPassphrase, device))
	}
}
