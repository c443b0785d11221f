package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/academy-desk/internal/db"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect saved intake drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved drafts, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDraftsList,
}

var draftsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one draft as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsGet,
}

var draftsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsDelete,
}

var draftsReasonsCmd = &cobra.Command{
	Use:   "reasons",
	Short: "Count drafts per withdrawal reason",
	Args:  cobra.NoArgs,
	RunE:  runDraftsReasons,
}

var (
	draftsLimit  int
	draftsOffset int
)

func init() {
	draftsListCmd.Flags().IntVar(&draftsLimit, "limit", db.DefaultListLimit, "Maximum drafts to list")
	draftsListCmd.Flags().IntVar(&draftsOffset, "offset", 0, "Drafts to skip")

	draftsCmd.AddCommand(draftsListCmd, draftsGetCmd, draftsDeleteCmd, draftsReasonsCmd)
	rootCmd.AddCommand(draftsCmd)
}

func runDraftsList(cmd *cobra.Command, _ []string) error {
	database, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()

	drafts, err := database.ListDrafts(cmd.Context(), draftsLimit, draftsOffset)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, d := range drafts {
		_, _ = fmt.Fprintf(out, "%s  %s  %-8s  %s\n",
			d.ID, d.CreatedAt.Format("2006-01-02 15:04"), orDash(d.StudentName), orDash(d.ReasonCategory))
	}
	return nil
}

func runDraftsGet(cmd *cobra.Command, args []string) error {
	id, err := parseDraftID(args[0])
	if err != nil {
		return err
	}

	database, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()

	draft, err := database.GetDraft(cmd.Context(), id)
	if err != nil {
		return err
	}
	if draft == nil {
		return fmt.Errorf("draft not found: %s", id)
	}
	return writeJSON(cmd.OutOrStdout(), draft)
}

func runDraftsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseDraftID(args[0])
	if err != nil {
		return err
	}

	database, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()

	deleted, err := database.DeleteDraft(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("draft not found: %s", id)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted draft %s\n", id)
	return nil
}

func runDraftsReasons(cmd *cobra.Command, _ []string) error {
	database, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer database.Close()

	counts, err := database.ReasonCounts(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, c := range counts {
		_, _ = fmt.Fprintf(out, "%-12s %d\n", c.Category, c.Count)
	}
	return nil
}

func parseDraftID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid draft ID: %w", err)
	}
	return id, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
