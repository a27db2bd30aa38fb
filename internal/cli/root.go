// Package cli implements the trackora command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/trackora/internal/paths"
	"github.com/mesh-intelligence/trackora/internal/tracker"
	"github.com/mesh-intelligence/trackora/pkg/trackora"
	"github.com/mesh-intelligence/trackora/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks command-line mistakes: wrong argument counts, bad flags
// and arguments that do not parse.
var errUsage = errors.New("usage")

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	month     string
	today     string
	verbose   bool
}

// app is the state shared by the commands of one root command.
type app struct {
	flags  rootFlags
	config *viper.Viper
	log    *zap.Logger
}

// NewRootCmd creates the top-level "trackora" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:     "trackora",
		Short:   "A local habit tracker",
		Long:    "Trackora records daily habit completions, sleep and notes per month,\nand reports streaks, discipline scores and monthly or weekly summaries.",
		Version: trackora.Version,
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.month, "month", "", "month to work on as YYYY-MM (default: current month)")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&a.flags.today, "today", "", "override today's date as YYYY-MM-DD")
	_ = pf.MarkHidden("today")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newConfigCmd(a),
		newProtocolCmd(a),
		newMarkCmd(a),
		newToggleCmd(a),
		newFillCmd(a),
		newSleepCmd(a),
		newNoteCmd(a),
		newShowCmd(a),
		newStatsCmd(a),
		newScoreCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newClearCmd(a),
		newProfileCmd(a),
		newThemeCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errUsage),
		errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrImport),
		errors.Is(err, types.ErrProtocolNotFound):
		return exitUserError
	default:
		return exitSysError
	}
}

// setup loads the configuration and builds the logger. It runs before
// every subcommand.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || !cmd.HasParent() {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.config, err = loadConfig(configDir)
	if err != nil {
		return err
	}
	a.log, err = newLogger(a.config.GetString(cfgKeyLogLevel), a.flags.verbose)
	if err != nil {
		return err
	}
	return nil
}

// storeConfig returns the slot configuration after resolving the data
// directory.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Backend:  a.config.GetString(cfgKeyBackend),
		DataDir:  dataDir,
		StoreKey: a.config.GetString(cfgKeyStoreKey),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("%w: config: %v", errUsage, err)
	}
	return cfg, nil
}

// clock returns the time source, honoring --today.
func (a *app) clock() (func() time.Time, error) {
	if a.flags.today == "" {
		return time.Now, nil
	}
	day, err := time.ParseInLocation("2006-01-02", a.flags.today, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: --today must be YYYY-MM-DD", errUsage)
	}
	return func() time.Time { return day }, nil
}

// open attaches the tracker and moves it to the --month cursor. The caller
// must Close it.
func (a *app) open() (*tracker.Tracker, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, err
	}
	now, err := a.clock()
	if err != nil {
		return nil, err
	}
	var month types.Month
	if a.flags.month != "" {
		if month, err = types.ParseMonth(a.flags.month); err != nil {
			return nil, err
		}
	}

	t, err := tracker.Open(cfg, tracker.WithLogger(a.log), tracker.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("open tracker: %w", err)
	}
	if a.flags.month != "" {
		if err := t.SetCurrentMonth(month); err != nil {
			t.Close()
			return nil, err
		}
	}
	return t, nil
}

// trackerRunE adapts fn to a cobra RunE that opens the tracker for the
// duration of the command.
func (a *app) trackerRunE(fn func(cmd *cobra.Command, args []string, t *tracker.Tracker) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		t, err := a.open()
		if err != nil {
			return err
		}
		defer t.Close()
		return fn(cmd, args, t)
	}
}

// usageArgs wraps a cobra argument validator so its failures count as
// usage errors.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
