// Package intake assembles a PartialRecord from pasted intake text: clean-up,
// label extraction, reason classification and derived fields.
package intake

import (
	"sync"

	"github.com/jonathan/academy-desk/internal/classify"
	"github.com/jonathan/academy-desk/internal/parsing"
	"github.com/jonathan/academy-desk/internal/paste"
	"github.com/jonathan/academy-desk/internal/types"
)

// Assembler runs the extraction pipeline with a fixed rule set and cascade.
// It holds no mutable state and may be shared between goroutines.
type Assembler struct {
	Rules         *parsing.RuleSet
	Cascade       *classify.Cascade
	CategoryField string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRules replaces the default withdrawal rule set.
func WithRules(rs *parsing.RuleSet) Option {
	return func(a *Assembler) {
		a.Rules = rs
	}
}

// WithCascade replaces the default withdrawal reason cascade.
func WithCascade(c *classify.Cascade) Option {
	return func(a *Assembler) {
		a.Cascade = c
	}
}

// WithCategoryField changes the field the inferred category is stored under.
// An empty name disables storing it.
func WithCategoryField(field string) Option {
	return func(a *Assembler) {
		a.CategoryField = field
	}
}

// New builds an Assembler. Without options it uses the withdrawal intake
// tables.
func New(opts ...Option) *Assembler {
	a := &Assembler{CategoryField: parsing.FieldReasonCategory}
	for _, opt := range opts {
		opt(a)
	}
	if a.Rules == nil {
		a.Rules = parsing.NewRuleSet(parsing.DefaultWithdrawalRules()...)
	}
	if a.Cascade == nil {
		a.Cascade = classify.DefaultWithdrawalCascade()
	}
	return a
}

// ExtractRecord turns raw pasted text into a PartialRecord. It never fails;
// anything it could not determine is absent from the result.
func (a *Assembler) ExtractRecord(rawText string) types.PartialRecord {
	rec, _ := a.Explain(rawText)
	return rec
}

// Explain is ExtractRecord that also reports how the category was chosen.
func (a *Assembler) Explain(rawText string) (types.PartialRecord, classify.Result) {
	text := paste.Clean(rawText)
	rec := a.Rules.Extract(text)

	res := a.Cascade.Explain(rec, text)
	if a.CategoryField != "" {
		rec.Set(a.CategoryField, res.Category)
	}

	a.Rules.Derive(rec)
	return rec.Compact(), res
}

var defaultAssembler = sync.OnceValue(func() *Assembler {
	return New()
})

// Default returns the process-wide withdrawal intake Assembler.
func Default() *Assembler {
	return defaultAssembler()
}

// ExtractRecord runs the default Assembler.
func ExtractRecord(rawText string) types.PartialRecord {
	return defaultAssembler().ExtractRecord(rawText)
}
