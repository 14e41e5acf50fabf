package cli

import (
	"github.com/nace/luksctl/internal/i18n"
	"github.com/spf13/cobra"
)

// NewPruneCommand creates the prune command, which drops records left
// behind by a crash or an unmount done outside luksctl.
func NewPruneCommand(ctx *GlobalContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove stale mount records",
		Long: `Remove mount records whose LUKS device is closed and whose mount point
is no longer mounted.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.requireRoot(ctx.Config.StateDir); err != nil {
				return err
			}

			pruned, warnings, err := ctx.Orchestrator.Prune()
			if err != nil {
				return err
			}
			ctx.ReportWarnings(warnings)

			if len(pruned) == 0 {
				ctx.Logger.Info("%s", ctx.Tr.T(i18n.PruneNone))
				return nil
			}
			for _, mp := range pruned {
				ctx.Logger.Success("%s", ctx.Tr.T(i18n.PruneRemoved, mp))
			}
			return nil
		},
	}
}
