package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pable/faceitwatch/internal/config"
	"github.com/pable/faceitwatch/internal/logger"
)

var (
	envFile    string
	logLevel   string
	rosterPath string
)

var rootCmd = &cobra.Command{
	Use:   "faceitwatch",
	Short: "FACEIT CS2 match notifier",
	Long: "Watch the FACEIT match history of a roster of players and post a " +
		"scoreboard to a Telegram chat whenever one of them finishes a match.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to a .env file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&rosterPath, "roster", "", "roster file (overrides ROSTER_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(dropCmd)
}

// setup loads the configuration and builds the process logger.
func setup() (*config.Config, zerolog.Logger, error) {
	boot := logger.New(firstNonEmpty(logLevel, os.Getenv("LOG_LEVEL"), "info"))
	cfg, err := config.Load(boot, envFile)
	if err != nil {
		return nil, boot, fmt.Errorf("load config: %w", err)
	}
	if rosterPath != "" {
		cfg.RosterPath = rosterPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
