package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/academy-desk/internal/db"
	"github.com/jonathan/academy-desk/internal/intake"
	"github.com/jonathan/academy-desk/internal/rulefile"
)

// loadAssembler returns the default withdrawal Assembler, or one built from
// the configured rule file.
func loadAssembler() (*intake.Assembler, error) {
	if appConfig.RulesFile == "" {
		return intake.Default(), nil
	}

	set, err := rulefile.Load(appConfig.RulesFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded rule file",
		zap.String("path", set.Path),
		zap.Int("fields", len(set.Rules.Fields())),
		zap.Int("categories", len(set.Cascade.Categories())),
	)
	return set.Assembler(), nil
}

// readInput reads a file, or the command's stdin when path is "" or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// openDB connects to the configured database and makes sure the draft table
// exists.
func openDB(ctx context.Context) (*db.DB, error) {
	if appConfig.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required (set it in the environment or the config file)")
	}

	database, err := db.Connect(ctx, appConfig.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// marshalLine encodes v as a single JSON line.
func marshalLine(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}
