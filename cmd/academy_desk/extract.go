package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/academy-desk/internal/db"
	"github.com/jonathan/academy-desk/internal/observability"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract a structured record from pasted intake text",
	Long: `Extract a withdrawal intake record from a text or HTML file (stdin when the
file is omitted or "-"). The record is printed as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

var (
	extractForm bool
	extractSave bool
)

func init() {
	extractCmd.Flags().BoolVar(&extractForm, "form", false, "Print the form view (every known field, absent ones empty)")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "Save the record as a draft (requires DATABASE_URL)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	text, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	assembler, err := loadAssembler()
	if err != nil {
		return err
	}

	rec, res := assembler.Explain(text)
	logger.Debug("extracted record",
		zap.Int("fields", len(rec)),
		zap.String("category", res.Category),
		zap.String("tier", string(res.Tier)),
	)

	if appConfig.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintRecord(rec, assembler.Rules.Fields())
		printer.PrintClassification(res)
	}

	if extractSave {
		database, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		draft, err := database.SaveDraft(cmd.Context(), db.NewDraftInput(text, rec))
		if err != nil {
			return err
		}
		logger.Info("saved draft", zap.String("id", draft.ID.String()))
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved draft %s\n", draft.ID)
	}

	if extractForm {
		return writeJSON(cmd.OutOrStdout(), rec.FormState(assembler.Rules.Fields()))
	}
	return writeJSON(cmd.OutOrStdout(), rec)
}
