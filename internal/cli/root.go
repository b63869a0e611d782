package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dashboard/internal/config"
	"github.com/Makepad-fr/dashboard/internal/form"
	"github.com/Makepad-fr/dashboard/internal/tui"
	"github.com/Makepad-fr/dashboard/internal/ui"
)

// Options hold the root flags plus the streams commands talk to.
type Options struct {
	ConfigPath string
	Storage    string
	DataPath   string
	Key        string
	Theme      string
	Verbose    bool
	NoColor    bool

	In       io.Reader
	Out, Err io.Writer

	// runTUI replaces tui.Run in tests.
	runTUI func(a *app) error
}

// applyTo lets explicit flags win over file and environment settings.
func (o *Options) applyTo(cfg *config.Config) {
	if o.Storage != "" {
		cfg.Storage.Backend = o.Storage
	}
	if o.DataPath != "" {
		cfg.Storage.Path = o.DataPath
	}
	if o.Key != "" {
		cfg.Storage.Key = o.Key
	}
	if o.Theme != "" {
		cfg.Theme = o.Theme
	}
}

// usageError marks errors that should exit with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usageArgs makes positional-argument errors exit with status 2.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the interactive table.
func NewRootCommand(opts *Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.runTUI == nil {
		opts.runTUI = func(a *app) error { return tui.Run(a.store, a.ctrl, a.log) }
	}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "dashboard - keep a small table of named values",
		Long: `dashboard manages a table of records (name, value, phone number)
persisted to a local key-value store.

Run without a subcommand to open the interactive table.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, opts.runTUI)
		},
	}
	cmd.SetIn(opts.In)
	cmd.SetOut(opts.Out)
	cmd.SetErr(opts.Err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "config file")
	pf.StringVar(&opts.Storage, "storage", "", "storage backend (json|sqlite|memory)")
	pf.StringVar(&opts.DataPath, "data", "", "data file or database path")
	pf.StringVar(&opts.Key, "key", "", "storage key holding the record list")
	pf.StringVar(&opts.Theme, "theme", "", "output theme (classic|neon|mono)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr at debug level")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable ANSI colors in plain output")

	cmd.AddCommand(
		newListCommand(opts),
		newAddCommand(opts),
		newEditCommand(opts),
		newRemoveCommand(opts),
		newSeedCommand(opts),
		newTUICommand(opts),
		newConfigCommand(opts),
	)
	return cmd
}

func newTUICommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive table",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, opts.runTUI)
		},
	}
}

// withApp opens the app, runs fn and closes the storage.
func withApp(opts *Options, fn func(a *app) error) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close storage: %w", err)
	}
	return runErr
}

// Run executes args and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opts Options) int {
	cmd := NewRootCommand(&opts)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	ui.Fail(opts.Err, err.Error())
	return exitCode(err)
}

func exitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) || form.IsValidation(err) || errors.Is(err, form.ErrNotFound) {
		return 2
	}
	return 1
}
