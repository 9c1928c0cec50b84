// Package cli implements the usermap command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mesh-intelligence/usermap/internal/paths"
	"github.com/mesh-intelligence/usermap/pkg/types"
	"github.com/mesh-intelligence/usermap/pkg/usermap"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	input     string
	outputDir string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags  rootFlags
	logger *zap.Logger
	// ownLogger is set when the logger was built here and must be synced.
	ownLogger bool
	cfg       types.Config
}

// NewRootCmd creates the top-level "usermap" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "usermap",
		Short:   "Assign user ids to survey responses",
		Long:    "usermap maps survey respondents to operator-assigned user ids, writes an\nannotated copy of the survey CSV, and looks up answers by user id.",
		Version: usermap.Version,
		// Errors are printed once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.ownLogger && a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("%w: no command given", types.ErrUsage)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+", default: $(CWD)/config)")
	root.PersistentFlags().StringVar(&a.flags.input, "input", "", "survey CSV to read (default: input from config.yaml)")
	root.PersistentFlags().StringVar(&a.flags.outputDir, "output-dir", "", "output directory (env "+paths.EnvOutputDir+", default: $(CWD)/output)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newProcessCmd(a))
	root.AddCommand(newQueryCmd(a))

	return root
}

// setup builds the logger and resolves configuration before any
// subcommand runs.
func (a *app) setup(cmd *cobra.Command) error {
	if a.logger == nil {
		logger, err := newLogger(a.flags.verbose)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		a.logger = logger
		a.ownLogger = true
	}

	if cmd.Name() == "version" || !cmd.HasParent() {
		return nil
	}

	cfg, err := a.resolveConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("configuration resolved",
		zap.String("input", cfg.InputPath),
		zap.String("mapping", cfg.MappingPath),
		zap.String("output", cfg.OutputPath),
		zap.Strings("key_columns", cfg.KeyColumns),
		zap.String("key_mode", cfg.EffectiveKeyMode()))
	return nil
}

// newLogger writes human-readable log lines to stderr; stdout carries
// command results only.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.DisableCaller = true
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}
