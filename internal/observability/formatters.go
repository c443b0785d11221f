// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jonathan/academy-desk/internal/classify"
	"github.com/jonathan/academy-desk/internal/normalize"
	"github.com/jonathan/academy-desk/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// labelWidth is the column width of field names in record boxes
	labelWidth = 18
	// barCells is the number of cells in a rating bar
	barCells = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Widths are
// measured in terminal cells so Hangul lines stay aligned.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", fit(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", fit(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}

// PrintRecord outputs the extracted fields in the given order, followed by
// any other fields the record holds. Ratings get a bar.
func (p *Printer) PrintRecord(rec types.PartialRecord, fields []string) {
	if rec == nil {
		return
	}

	order := make([]string, 0, len(rec))
	for _, f := range fields {
		if rec.Has(f) && !slices.Contains(order, f) {
			order = append(order, f)
		}
	}
	for _, f := range rec.Fields() {
		if !slices.Contains(order, f) {
			order = append(order, f)
		}
	}

	if len(order) == 0 {
		p.printBox("EXTRACTED RECORD", "(no fields found)")
		return
	}

	var sb strings.Builder
	for i, f := range order {
		sb.WriteString(fit(f, labelWidth))
		sb.WriteString(formatField(rec[f]))
		if i < len(order)-1 {
			sb.WriteString("\n")
		}
	}
	if len(fields) > 0 {
		sb.WriteString(fmt.Sprintf("\n\n%d of %d known fields found", countKnown(rec, fields), len(fields)))
	}

	p.printBox("EXTRACTED RECORD", sb.String())
}

func formatField(v any) string {
	switch val := v.(type) {
	case float64:
		return fmt.Sprintf("%-4s %s", types.FormatValue(val), ratingBar(val))
	case bool:
		if val {
			return "yes"
		}
		return "no"
	default:
		return strings.ReplaceAll(types.FormatValue(v), "\n", " / ")
	}
}

// ratingBar draws score/5 as filled cells.
func ratingBar(score float64) string {
	filled := int(normalize.BarPercent(normalize.Value{Numeric: score})/100*barCells + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)
}

func countKnown(rec types.PartialRecord, fields []string) int {
	n := 0
	for _, f := range fields {
		if rec.Has(f) {
			n++
		}
	}
	return n
}

// PrintClassification outputs how the withdrawal reason was chosen.
func (p *Printer) PrintClassification(res classify.Result) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Category: %s\n", res.Category))
	sb.WriteString(fmt.Sprintf("Tier:     %s", res.Tier))
	if res.Keyword != "" {
		sb.WriteString(fmt.Sprintf("\nKeyword:  %s", res.Keyword))
	}
	if res.Source != "" {
		sb.WriteString(fmt.Sprintf("\nSource:   %s", res.Source))
	}

	p.printBox("WITHDRAWAL REASON", sb.String())
}

// PrintBatchSummary outputs how many records fell under each category.
func (p *Printer) PrintBatchSummary(records []types.PartialRecord, categoryField string) {
	if len(records) == 0 {
		return
	}

	counts := make(map[string]int)
	for _, rec := range records {
		c := rec.String(categoryField)
		if c == "" {
			c = "(none)"
		}
		counts[c]++
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if counts[categories[i]] != counts[categories[j]] {
			return counts[categories[i]] > counts[categories[j]]
		}
		return categories[i] < categories[j]
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Records: %d\n", len(records)))
	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("\n%s%d", fit(c, labelWidth), counts[c]))
	}

	p.printBox("BATCH SUMMARY", sb.String())
}
