// Package cli implements the ownbox command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/ownbox/internal/paths"
	"github.com/mesh-intelligence/ownbox/internal/walk"
	"github.com/mesh-intelligence/ownbox/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// session is the state loaded by the root command before any subcommand runs.
type session struct {
	configDir string
	config    *viper.Viper
	logger    *log.Logger
}

var current session

// NewRootCmd creates the top-level "ownbox" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ownbox",
		Short: "Walk through single-owner containers, borrows, and capability dispatch",
		Long: "ownbox runs a walkthrough of a generic optional container under\n" +
			"runtime-checked ownership rules and records every ownership transition\n" +
			"in a SQLite journal.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		PersistentPreRunE: loadSession,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log every ownership transition")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newScenariosCmd())
	root.AddCommand(newWalkCmd())
	root.AddCommand(newJournalCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ownbox:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps errors the user can fix to exitUserError and everything
// else to exitSysError.
func exitCode(err error) int {
	switch {
	case errors.Is(err, walk.ErrUnknownScenario),
		errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, types.ErrBackendEmpty),
		errors.Is(err, types.ErrBackendUnknown),
		errors.Is(err, errInvalidLogLevel):
		return exitUserError
	default:
		return exitSysError
	}
}

// loadSession resolves the config directory, reads config.yaml, and builds
// the logger.
func loadSession(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.GetString(cfgKeyLogLevel), flags.verbose)
	if err != nil {
		return err
	}

	current = session{configDir: configDir, config: cfg, logger: logger}
	logger.Debug("config loaded", "dir", configDir, "file", cfg.ConfigFileUsed())
	return nil
}

// resolveDataDir returns the data directory following the precedence:
// --data-dir flag > config.yaml data_dir > OWNBOX_DATA_DIR > platform default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flags.dataDir, current.config.GetString(cfgKeyDataDir))
}
