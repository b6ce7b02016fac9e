// Package cmd contains all CLI commands for the pokedex tool.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/f3rmion/pokedex/internal/config"
	"github.com/f3rmion/pokedex/internal/pokeapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool

	// Resolved in PersistentPreRunE.
	cfg       *config.Config
	configDir string
	logger    *zap.Logger

	// v holds flag and POKEDEX_* environment overrides.
	v = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pokedex",
	Short: "Search and browse Pokémon from the terminal",
	Long: `pokedex is a terminal client for PokeAPI.

Search for a Pokémon by name or browse the first entries of the
Pokédex as cards with sprite art.

Running 'pokedex' without arguments launches the interactive TUI.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pokedex/config.yaml)")
	flags.BoolVar(&verbose, "verbose", false, "debug logging")
	flags.String("api-url", "", "PokeAPI base URL")
	flags.Int("limit", 0, "number of entries in the initial list")

	v.BindPFlag("api_base_url", flags.Lookup("api-url"))
	v.BindPFlag("list_limit", flags.Lookup("limit"))

	v.SetEnvPrefix("POKEDEX")
	v.AutomaticEnv()
}

// setup loads the configuration and opens the log file.
func setup(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	configDir = filepath.Dir(path)

	cfg, err = config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.ApplyOverrides(v); err != nil {
		return fmt.Errorf("applying overrides: %w", err)
	}

	logger, err = newLogger(cfg.LogPath(configDir), cfg.LogLevel, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("configuration loaded",
		zap.String("path", path),
		zap.String("api", cfg.APIBaseURL),
		zap.Int("limit", cfg.ListLimit))
	return nil
}

// configPath returns the --config file or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(dir, config.FileName), nil
}

// newLogger writes JSON lines to path. The TUI owns the terminal, so
// nothing is logged to stderr.
func newLogger(path, level string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}

// newClient builds the API client from the resolved configuration.
func newClient() *pokeapi.Client {
	return pokeapi.NewClient(cfg.APIBaseURL,
		pokeapi.WithTimeout(cfg.HTTPTimeout),
		pokeapi.WithMaxConcurrency(cfg.MaxConcurrency),
		pokeapi.WithLogger(logger.Named("pokeapi")),
	)
}
