package cli

import (
	"fmt"
	"time"

	"github.com/nace/luksctl/internal/i18n"
	"github.com/nace/luksctl/internal/system"
	"github.com/nace/luksctl/internal/ui"
	"github.com/nace/luksctl/internal/workflow"
	"github.com/spf13/cobra"
)

// ListCommand handles listing mounted LUKS devices
type ListCommand struct {
	ctx  *GlobalContext
	json bool
}

// NewListCommand creates the list command
func NewListCommand(ctx *GlobalContext) *cobra.Command {
	cmd := &ListCommand{ctx: ctx}

	cobraCmd := &cobra.Command{
		Use:   "list",
		Short: "List mounted LUKS devices",
		Long: `List LUKS devices mounted by luksctl, and luks-* mounts that have no
record. Records whose device is no longer open are marked stale.`,
		Args: exactArgs(0),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolVarP(&cmd.json, "json", "j", false, "JSON output")

	return cobraCmd
}

type listEntry struct {
	MountPoint   string     `json:"mount_point"`
	MapperID     string     `json:"mapper_id,omitempty"`
	SourceDevice string     `json:"source_device"`
	Tracked      bool       `json:"tracked"`
	Active       bool       `json:"active"`
	Mounted      bool       `json:"mounted"`
	Stale        bool       `json:"stale"`
	ReadOnly     bool       `json:"read_only"`
	FSType       string     `json:"fs_type,omitempty"`
	MountedAt    *time.Time `json:"mounted_at,omitempty"`
	Size         uint64     `json:"size,omitempty"`
	Used         uint64     `json:"used,omitempty"`
}

// Run executes the list command
func (c *ListCommand) Run(cmd *cobra.Command, args []string) error {
	if err := c.ctx.requireRoot(c.ctx.Config.StateDir); err != nil {
		return err
	}

	volumes, warnings, err := c.ctx.Orchestrator.Status()
	if err != nil {
		return err
	}
	c.ctx.ReportWarnings(warnings)

	entries := make([]listEntry, 0, len(volumes))
	for _, v := range volumes {
		entries = append(entries, c.entry(v))
	}

	if c.json {
		return ui.FprintJSON(c.ctx.Stdout, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(c.ctx.Stdout, c.ctx.Tr.T(i18n.ListEmpty))
		return nil
	}
	c.printTable(entries)
	return nil
}

func (c *ListCommand) entry(v workflow.VolumeStatus) listEntry {
	e := listEntry{
		MountPoint:   v.MountPoint,
		MapperID:     v.MapperID,
		SourceDevice: v.SourceDevice,
		Tracked:      v.Tracked,
		Active:       v.Active,
		Mounted:      v.Mounted,
		Stale:        v.Stale(),
	}
	if v.Record != nil {
		e.ReadOnly = v.Record.Options.ReadOnly
		e.FSType = v.Record.Options.FSType
		if !v.Record.MountedAt.IsZero() {
			at := v.Record.MountedAt
			e.MountedAt = &at
		}
	}
	if v.Mounted {
		if size, used, err := c.ctx.DiskUsage(v.MountPoint); err == nil {
			e.Size, e.Used = size, used
		} else {
			c.ctx.Log.Debug().Err(err).Str("mount_point", v.MountPoint).Msg("disk usage unavailable")
		}
	}
	return e
}

func (c *ListCommand) printTable(entries []listEntry) {
	tr := c.ctx.Tr
	table := ui.NewTable(
		tr.T(i18n.ListHeaderMountPoint),
		tr.T(i18n.ListHeaderDevice),
		tr.T(i18n.ListHeaderMapper),
		tr.T(i18n.ListHeaderSize),
		tr.T(i18n.ListHeaderUsed),
		tr.T(i18n.ListHeaderState),
	)

	for _, e := range entries {
		size := "-"
		used := "-"
		if e.Size > 0 {
			size = system.FormatSize(e.Size)
			used = system.FormatSize(e.Used)
		}

		status := tr.T(i18n.ListTracked)
		switch {
		case e.Stale:
			status = tr.T(i18n.ListStale)
		case !e.Tracked:
			status = tr.T(i18n.ListUntracked)
		}

		mapper := e.MapperID
		if mapper == "" {
			mapper = "-"
		}

		table.AddRow(e.MountPoint, e.SourceDevice, mapper, size, used, status)
	}

	table.Fprint(c.ctx.Stdout)
}
