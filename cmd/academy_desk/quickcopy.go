package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/academy-desk/internal/types"
)

var quickCopyCmd = &cobra.Command{
	Use:   "quickcopy [record.json]",
	Short: "Render a JSON record back into labeled intake text",
	Long: `Render a record (as printed by extract) into "label: value" lines that
extract reads back into the same record.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuickCopy,
}

func init() {
	rootCmd.AddCommand(quickCopyCmd)
}

func runQuickCopy(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	var rec types.PartialRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return fmt.Errorf("failed to parse record JSON: %w", err)
	}

	assembler, err := loadAssembler()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), assembler.QuickCopy(rec))
	return err
}
