package cli

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/nace/luksctl/internal/config"
	"github.com/nace/luksctl/internal/i18n"
	"github.com/nace/luksctl/internal/state"
	"github.com/nace/luksctl/internal/system"
	"github.com/nace/luksctl/internal/ui"
	"github.com/nace/luksctl/internal/volume"
	"github.com/nace/luksctl/internal/workflow"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Options are the global flags shared by every command.
type Options struct {
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Debug    bool
	StateDir string
}

// GlobalContext holds shared resources for all commands
type GlobalContext struct {
	Options Options

	Config       config.Config
	Logger       *ui.Logger
	Log          zerolog.Logger
	Tr           *i18n.Translator
	Executor     *system.Executor
	Orchestrator *workflow.Orchestrator

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// System hooks, replaced in tests.
	RequireRoot       func() error
	CheckDependencies func() error
	ValidateDevice    func(path string) error
	CanonicalPath     func(path string) string
	DiskUsage         func(mountPoint string) (size, used uint64, err error)
	PromptPassword    func(prompt string) (*system.SecureBytes, error)
}

// NewGlobalContext creates a context wired to the real system. Setup must
// run once flags are parsed.
func NewGlobalContext() *GlobalContext {
	ctx := &GlobalContext{
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		Tr:             i18n.New(i18n.Detect(os.Getenv)),
		Log:            zerolog.Nop(),
		RequireRoot:    system.RequireRoot,
		ValidateDevice: system.ValidateDevicePath,
		CanonicalPath:  system.CanonicalPath,
		DiskUsage:      system.DiskUsage,
		PromptPassword: ui.PromptPassword,
	}
	ctx.Logger = ui.NewLoggerTo(ctx.Stderr, false, false, false)
	ctx.CheckDependencies = func() error {
		if ctx.Executor == nil {
			return nil
		}
		return ctx.Executor.CheckDependencies([]string{"cryptsetup", "mount", "umount"})
	}
	return ctx
}

// BindFlags registers the global flags on cmd.
func (ctx *GlobalContext) BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&ctx.Options.Verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVarP(&ctx.Options.Quiet, "quiet", "q", false, "Quiet mode (suppress non-error output)")
	flags.BoolVar(&ctx.Options.NoColor, "no-color", false, "Disable color output")
	flags.BoolVar(&ctx.Options.Debug, "debug", false, "Debug mode (show commands)")
	flags.StringVar(&ctx.Options.StateDir, "state-dir", "", "State directory (default from config, "+state.DefaultDir+")")
}

// Setup loads the configuration and builds the collaborators from the
// parsed flags. Collaborators that are already set are kept.
func (ctx *GlobalContext) Setup(cmd *cobra.Command, args []string) error {
	opts := ctx.Options
	if opts.NoColor {
		color.NoColor = true
	}
	ctx.Logger = ui.NewLoggerTo(ctx.Stderr, opts.Verbose, opts.Quiet, opts.NoColor)
	if opts.Debug {
		ctx.Log = zerolog.New(zerolog.ConsoleWriter{Out: ctx.Stderr, NoColor: opts.NoColor}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}

	path := config.Path()
	cfg, err := config.Load(afero.NewOsFs(), path)
	if err != nil {
		return &workflow.Error{Kind: workflow.InvalidArgument, Path: path, Err: err}
	}
	if opts.StateDir != "" {
		cfg.StateDir = opts.StateDir
	}
	ctx.Config = cfg
	if cfg.Locale != "" {
		ctx.Tr = i18n.New(cfg.Locale)
	}
	ctx.Log.Debug().Str("config", path).Str("state_dir", cfg.StateDir).Str("locale", ctx.Tr.Locale()).Msg("configuration loaded")

	if ctx.Orchestrator != nil {
		return nil
	}

	ctx.Executor = system.NewExecutor(ctx.Log)
	policy := cfg.Policy()
	ctx.Orchestrator = workflow.New(workflow.Deps{
		Locker:  volume.NewCryptsetup(ctx.Executor),
		Mounter: volume.NewMountManager(ctx.Executor, policy),
		Table:   volume.NewMountTable(),
		Store:   state.NewStore(afero.NewOsFs(), cfg.StateDir),
		Policy:  policy,
		Log:     ctx.Log,
	})
	return nil
}

// requireRoot wraps the privilege check in a typed error about target.
func (ctx *GlobalContext) requireRoot(target string) error {
	if err := ctx.RequireRoot(); err != nil {
		return &workflow.Error{Kind: workflow.PermissionDenied, Path: target, Err: err}
	}
	return nil
}

// exactArgs is cobra.ExactArgs with a typed usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &workflow.Error{Kind: workflow.InvalidArgument, Err: err}
		}
		return nil
	}
}

func flagError(cmd *cobra.Command, err error) error {
	return &workflow.Error{Kind: workflow.InvalidArgument, Err: err}
}
