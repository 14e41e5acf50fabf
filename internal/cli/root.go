package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCommand creates the luksctl command with all subcommands.
func NewRootCommand(ctx *GlobalContext) *cobra.Command {
	root := &cobra.Command{
		Use:   "luksctl",
		Short: "luksctl - LUKS mount and unmount helper",
		Long: `luksctl unlocks LUKS encrypted block devices and mounts them, and
unmounts and locks them again, keeping track of what it mounted.

A failed mount never leaves a device unlocked.`,
		Version: Version,
	}
	configureRoot(ctx, root)

	root.AddCommand(NewMountCommand(ctx))
	root.AddCommand(NewUnmountCommand(ctx))
	root.AddCommand(NewListCommand(ctx))
	root.AddCommand(NewPruneCommand(ctx))

	// Set up help templates
	root.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// NewMountToolCommand creates the standalone luks-mount command.
func NewMountToolCommand(ctx *GlobalContext) *cobra.Command {
	cmd := NewMountCommand(ctx)
	cmd.Use = "luks-mount [flags] DEVICE MOUNTPOINT"
	cmd.Version = Version
	configureRoot(ctx, cmd)
	return cmd
}

// NewUnmountToolCommand creates the standalone luks-umount command.
func NewUnmountToolCommand(ctx *GlobalContext) *cobra.Command {
	cmd := NewUnmountCommand(ctx)
	cmd.Use = "luks-umount [flags] MOUNTPOINT"
	cmd.Aliases = nil
	cmd.Version = Version
	configureRoot(ctx, cmd)
	return cmd
}

func configureRoot(ctx *GlobalContext, root *cobra.Command) {
	ctx.BindFlags(root)
	root.PersistentPreRunE = ctx.Setup
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetFlagErrorFunc(flagError)
	root.SetOut(ctx.Stdout)
	root.SetErr(ctx.Stderr)
}

// Execute runs root, reports a failure and returns the exit code.
func Execute(ctx *GlobalContext, root *cobra.Command) int {
	err := root.Execute()
	if err != nil {
		ctx.ReportError(err)
	}
	return ExitCode(err)
}
