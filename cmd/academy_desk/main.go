// Package main provides the academy_desk CLI: withdrawal intake extraction,
// draft storage and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/academy-desk/internal/config"
	"github.com/jonathan/academy-desk/internal/logging"
)

var (
	configPath string
	rulesPath  string
	logLevel   string
	verbose    bool

	// Set by the root command's PersistentPreRunE.
	appConfig config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "academy_desk",
	Short: "Academy withdrawal intake extraction",
	Long: `academy_desk turns pasted withdrawal consultation notes into structured
records: labeled fields are extracted and normalized, and the withdrawal
reason is classified into a fixed category set.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (.json, .yaml)")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Path to a custom rule file (overrides ACADEMY_RULES_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print formatted summaries and debug logs")
}

// setup resolves configuration (file, environment, defaults; flags win) and
// builds the logger.
func setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if rulesPath != "" {
		cfg.RulesFile = rulesPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.Verbose = true
	}

	l, err := logging.New(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger = l
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
