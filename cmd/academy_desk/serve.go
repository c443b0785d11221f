package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/academy-desk/internal/server"
	"github.com/jonathan/academy-desk/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing extraction, normalization and quick-copy
endpoints. With DATABASE_URL set, drafts and reason analytics are served too.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: config port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	assembler, err := loadAssembler()
	if err != nil {
		return err
	}

	var store server.DraftStore
	if appConfig.DatabaseURL != "" {
		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()
		store = database
	} else {
		logger.Warn("DATABASE_URL not set; draft routes are disabled")
	}

	port := servePort
	if port == 0 {
		port = appConfig.Port
	}

	srv := server.New(server.Config{
		Port:           port,
		AllowedOrigins: appConfig.AllowedOrigins,
		Workers:        appConfig.Workers,
		RateLimit:      ratelimit.LoadConfig(),
	}, assembler, store, logger)

	logger.Debug("server configured", zap.Int("port", port), zap.Bool("drafts", store != nil))
	return srv.Start(cmd.Context())
}
