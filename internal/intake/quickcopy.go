package intake

import (
	"strings"

	"github.com/jonathan/academy-desk/internal/parsing"
	"github.com/jonathan/academy-desk/internal/types"
)

// QuickCopy renders a record back into "label: value" lines using each
// field's first label, in rule order. Extracting the result with the same
// Assembler yields the same values for every rendered field. Fields the rule
// set does not know are skipped.
func (a *Assembler) QuickCopy(rec types.PartialRecord) string {
	var lines []string
	for _, r := range a.Rules.Rules() {
		lines = appendRule(lines, r, rec)
	}
	return strings.Join(lines, "\n")
}

func appendRule(lines []string, r parsing.ExtractionRule, rec types.PartialRecord) []string {
	if r.Shape == parsing.Compound {
		if c := r.Composite; c != nil && len(r.Labels) > 0 && rec.Has(c.StartField) && rec.Has(c.EndField) {
			value := rec.String(c.StartField) + " ~ " + rec.String(c.EndField)
			if c.DurationField != "" && rec.Has(c.DurationField) {
				value += " (" + rec.String(c.DurationField) + "개월)"
			}
			return append(lines, r.Labels[0]+": "+value)
		}
		for _, fb := range r.Fallback {
			lines = appendRule(lines, fb, rec)
		}
		return lines
	}

	if len(r.Labels) == 0 || !rec.Has(r.Field) {
		return lines
	}
	return append(lines, r.Labels[0]+": "+renderValue(rec[r.Field]))
}

func renderValue(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "있음"
		}
		return "없음"
	}
	return types.FormatValue(v)
}

// QuickCopy renders rec with the default Assembler.
func QuickCopy(rec types.PartialRecord) string {
	return defaultAssembler().QuickCopy(rec)
}
