// Root command for the larder CLI.
package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/larder"
)

const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagVerbose   bool
)

// config holds the loaded config.yaml. Set by PersistentPreRunE so all
// subcommands can use it.
var config *viper.Viper

var rootCmd = &cobra.Command{
	Use:   "larder",
	Short: "larder creates and tears down test fixtures",
	Long: `larder runs fixture scenarios against a backend: each scenario creates
content, users, terms, roles and languages from table rows, and everything it
created is removed again when the scenario ends.`,
	Version:       larder.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return systemError(err)
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return systemError(err)
		}

		config = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir/larder)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.larder-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output and debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(fieldCmd)
}

// resolveDataDir returns the data directory:
// --data-dir flag > config.yaml data_dir > LARDER_DATA_DIR env > $(CWD)/.larder-db.
func resolveDataDir() (string, error) {
	configValue := ""
	if config != nil {
		configValue = config.GetString(cfgKeyDataDir)
	}
	return paths.ResolveDataDir(flagDataDir, configValue)
}

// resolveConfigDir returns the configuration directory:
// --config-dir flag > LARDER_CONFIG_DIR env > DefaultConfigDir().
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// newLogger writes text logs to w, at debug level under --verbose.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
