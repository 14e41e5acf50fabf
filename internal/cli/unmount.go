package cli

import (
	"path/filepath"

	"github.com/nace/luksctl/internal/i18n"
	"github.com/nace/luksctl/internal/workflow"
	"github.com/spf13/cobra"
)

// UnmountCommand handles unmounting and locking a LUKS device
type UnmountCommand struct {
	ctx   *GlobalContext
	force bool
}

// NewUnmountCommand creates the unmount command
func NewUnmountCommand(ctx *GlobalContext) *cobra.Command {
	cmd := &UnmountCommand{ctx: ctx}

	cobraCmd := &cobra.Command{
		Use:     "unmount [flags] MOUNTPOINT",
		Aliases: []string{"umount"},
		Short:   "Unmount and lock a LUKS device",
		Long: `Unmount the filesystem at MOUNTPOINT and close the LUKS device behind it.

The device is found from the mount record written by mount, or from the
kernel mount table when no record exists.`,
		Args: exactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVarP(&cmd.force, "force", "f", false, "Force unmount (try umount -f, then umount -l)")

	return cobraCmd
}

// Run executes the unmount command
func (c *UnmountCommand) Run(cmd *cobra.Command, args []string) error {
	if err := c.ctx.requireRoot(args[0]); err != nil {
		return err
	}

	if err := c.ctx.CheckDependencies(); err != nil {
		return err
	}

	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return &workflow.Error{Kind: workflow.InvalidArgument, Path: args[0], Err: err}
	}
	mountPoint := c.ctx.CanonicalPath(absPath)
	c.ctx.Logger.Debug("Resolved mount point: %s", mountPoint)

	res, err := c.ctx.Orchestrator.Unmount(workflow.UnmountRequest{
		MountPoint: mountPoint,
		Force:      c.force,
	})
	if err != nil {
		return err
	}

	tr := c.ctx.Tr
	if res.FromMountTable {
		c.ctx.Logger.Info("%s", tr.T(i18n.UnmountFromMountTable, res.MapperID))
	}
	c.ctx.ReportWarnings(res.Warnings)
	if res.Locked {
		c.ctx.Logger.Info("%s", tr.T(i18n.UnmountLocked, res.MapperID))
	}
	c.ctx.Logger.Success("%s", tr.T(i18n.UnmountSuccess, res.MountPoint))

	return nil
}
