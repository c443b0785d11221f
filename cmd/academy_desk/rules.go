package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/academy-desk/internal/classify"
	"github.com/jonathan/academy-desk/internal/parsing"
	"github.com/jonathan/academy-desk/internal/rulefile"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate extraction rules",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a rule file against the rule schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesValidate,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active label and keyword tables",
	Args:  cobra.NoArgs,
	RunE:  runRulesShow,
}

var rulesShowJSON bool

func init() {
	rulesShowCmd.Flags().BoolVar(&rulesShowJSON, "json", false, "Print the tables as JSON")

	rulesCmd.AddCommand(rulesValidateCmd, rulesShowCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	set, err := rulefile.Load(args[0])
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (%d fields, %d categories)\n",
		set.Path, len(set.Rules.Fields()), len(set.Cascade.Categories()))
	return nil
}

type fieldSummary struct {
	Field  string   `json:"field"`
	Labels []string `json:"labels"`
	Shape  string   `json:"shape"`
}

type rulesSummary struct {
	CategoryField string          `json:"category_field,omitempty"`
	Fields        []fieldSummary  `json:"fields"`
	Categories    []classify.Rule `json:"categories"`
	Default       string          `json:"default"`
}

func runRulesShow(cmd *cobra.Command, _ []string) error {
	assembler, err := loadAssembler()
	if err != nil {
		return err
	}

	summary := rulesSummary{CategoryField: assembler.CategoryField, Default: assembler.Cascade.Default}
	for _, r := range assembler.Rules.Rules() {
		summary.Fields = append(summary.Fields, summarizeRule(r)...)
	}
	if assembler.Cascade.Table != nil {
		summary.Categories = assembler.Cascade.Table.Rules()
	}

	if rulesShowJSON {
		return writeJSON(cmd.OutOrStdout(), summary)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FIELD\tSHAPE\tLABELS")
	for _, f := range summary.Fields {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Field, f.Shape, strings.Join(f.Labels, ", "))
	}
	_, _ = fmt.Fprintln(tw)
	_, _ = fmt.Fprintln(tw, "CATEGORY\tKEYWORDS")
	for _, c := range summary.Categories {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", c.Category, strings.Join(c.Keywords, ", "))
	}
	_, _ = fmt.Fprintf(tw, "%s\t(default)\n", summary.Default)
	return tw.Flush()
}

// summarizeRule lists a rule and, for compound rules, its fallbacks.
func summarizeRule(r parsing.ExtractionRule) []fieldSummary {
	out := []fieldSummary{{Field: r.Field, Labels: r.Labels, Shape: r.Shape.String()}}
	for _, fb := range r.Fallback {
		for _, s := range summarizeRule(fb) {
			s.Field = r.Field + "/" + s.Field
			out = append(out, s)
		}
	}
	return out
}
