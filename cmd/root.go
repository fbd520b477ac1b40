package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/reloquent/entitycheck/internal/config"
	"github.com/reloquent/entitycheck/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	envFile  string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "entitycheck",
	Short: "Verify entity classes against a DBML schema",
	Long: `entitycheck compares a DBML schema manifest (or a live PostgreSQL/MySQL
database) with a directory of C# entity classes and writes a report of
unmapped tables, missing or extra columns, and foreign-key mismatches.

Running without a subcommand runs verify.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(envFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, .yaml or .toml (default: ./"+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before secrets are resolved")
	addVerifyFlags(rootCmd)
}

// loadEnv loads a dotenv file into the process environment. A missing file is
// ignored; variables already set win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyVerifyFlags(cmd, cfg)
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogger builds the process logger from the logging section.
func setupLogger(cfg *config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.Setup(cfg.Logging.Level, cfg.Logging.File, w)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}
	slog.SetDefault(logger)
	return logger, closer, nil
}
