package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/academy-desk/internal/normalize"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <value>...",
	Short: "Normalize rating phrases, dates, phone numbers or durations",
	Long: `Normalize each argument with one value normalizer. The default kind,
qualitative, maps rating phrases such as "매우 좋음" onto the 1-5 scale.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

var (
	normalizeKind string
	normalizeJSON bool
)

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeKind, "kind", "k", "qualitative", "Normalizer: qualitative, date, phone, months, yesno")
	normalizeCmd.Flags().BoolVar(&normalizeJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(normalizeCmd)
}

type normalizeResult struct {
	Input   string   `json:"input"`
	Numeric float64  `json:"numeric"`
	Display string   `json:"display"`
	Percent *float64 `json:"percent,omitempty"`
}

func runNormalize(cmd *cobra.Command, args []string) error {
	fn, ok := normalize.ByName(normalizeKind)
	if !ok {
		return fmt.Errorf("unknown normalizer %q", normalizeKind)
	}
	rating := isRatingKind(normalizeKind)

	results := make([]normalizeResult, 0, len(args))
	for _, arg := range args {
		v := fn(arg)
		r := normalizeResult{Input: arg, Numeric: v.Numeric, Display: v.Display}
		if rating {
			pct := normalize.BarPercent(v)
			r.Percent = &pct
		}
		results = append(results, r)
	}

	if normalizeJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Percent != nil {
			_, _ = fmt.Fprintf(out, "%s\t%g\t%g%%\n", r.Display, r.Numeric, *r.Percent)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s\n", r.Display)
	}
	return nil
}

func isRatingKind(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "qualitative", "rating":
		return true
	}
	return false
}
