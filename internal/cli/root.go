// Package cli implements the folioscan command-line tool.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"folioscan/internal/config"
	"folioscan/internal/logger"
)

var (
	envFile  string
	logLevel string

	cfg *config.Config
	lg  *logger.Log
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "folioscan",
	Short: "Extract portfolio holdings from brokerage app screenshots",
	Long: `folioscan reads screenshots of a brokerage app's holdings screen,
extracts (ticker, weight) pairs with the configured OCR providers and
merges them into one portfolio draft whose weights sum to 100.

Providers and batching are configured with FOLIOSCAN_* environment
variables, optionally loaded from a .env file.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading FOLIOSCAN_* variables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

func setup(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		// A missing file is fine; variables may come from the environment.
		_ = godotenv.Load(envFile)
	}

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = c

	lg = logger.New()
	if err := lg.Configure(logLevel, "text", "stderr", 0); err != nil {
		return err
	}
	lg.SetOutput(cmd.ErrOrStderr())
	logger.SetGlobal(lg)
	return nil
}
