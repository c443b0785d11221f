// Package classify infers a closed-set category for an extracted record,
// falling back from explicit fields to keyword evidence spread over free-text
// fields and finally to a default category.
package classify

import (
	"strings"

	"github.com/jonathan/academy-desk/internal/types"
)

// Rule maps keywords to a category.
type Rule struct {
	Category string   `json:"category" yaml:"category"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Table is an ordered, immutable keyword table. The first rule with a
// matching keyword wins, so decisive keywords belong to earlier rules.
type Table struct {
	rules []Rule
}

// NewTable builds a Table. Keywords are lower-cased and blank ones dropped;
// the input is copied.
func NewTable(rules ...Rule) *Table {
	t := &Table{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		t.rules = append(t.rules, Rule{Category: r.Category, Keywords: kws})
	}
	return t
}

// Rules returns a copy of the table in evaluation order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Categories lists the table's categories in evaluation order.
func (t *Table) Categories() []string {
	out := make([]string, 0, len(t.rules))
	for _, r := range t.rules {
		out = append(out, r.Category)
	}
	return out
}

// Match returns the first category with a keyword contained in text, along
// with the keyword that decided it.
func (t *Table) Match(text string) (category, keyword string, ok bool) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return "", "", false
	}
	for _, r := range t.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Category, kw, true
			}
		}
	}
	return "", "", false
}

// Tier identifies which step of the cascade produced a category.
type Tier string

const (
	TierExplicit Tier = "explicit"
	TierEvidence Tier = "evidence"
	TierDefault  Tier = "default"
)

// Result explains a classification.
type Result struct {
	Category string `json:"category"`
	Tier     Tier   `json:"tier"`
	Keyword  string `json:"keyword,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Cascade classifies a record in three tiers: explicit fields, aggregated
// evidence fields, then the default category.
type Cascade struct {
	Table          *Table
	ExplicitFields []string
	EvidenceFields []string
	Default        string
}

// Classify returns the record's category. It never returns "" as long as
// Default is set.
func (c *Cascade) Classify(partial types.PartialRecord, rawText string) string {
	return c.Explain(partial, rawText).Category
}

// Explain classifies like Classify and reports which tier decided.
//
// rawText is consulted only when none of the evidence fields were captured,
// so unlabeled narrative text can still be classified.
func (c *Cascade) Explain(partial types.PartialRecord, rawText string) Result {
	if c.Table != nil {
		for _, f := range c.ExplicitFields {
			value := partial.String(f)
			if value == "" {
				continue
			}
			if cat, ok := c.exactCategory(value); ok {
				return Result{Category: cat, Tier: TierExplicit, Source: f}
			}
			if cat, kw, ok := c.Table.Match(value); ok {
				return Result{Category: cat, Tier: TierExplicit, Keyword: kw, Source: f}
			}
		}

		evidence := c.evidence(partial)
		source := "fields"
		if evidence == "" && !c.hasExplicit(partial) {
			evidence = strings.ToLower(rawText)
			source = "text"
		}
		if cat, kw, ok := c.Table.Match(evidence); ok {
			return Result{Category: cat, Tier: TierEvidence, Keyword: kw, Source: source}
		}
	}
	return Result{Category: c.Default, Tier: TierDefault}
}

func (c *Cascade) evidence(partial types.PartialRecord) string {
	parts := make([]string, 0, len(c.EvidenceFields))
	for _, f := range c.EvidenceFields {
		if v := partial.String(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func (c *Cascade) hasExplicit(partial types.PartialRecord) bool {
	for _, f := range c.ExplicitFields {
		if partial.Has(f) {
			return true
		}
	}
	return false
}

// exactCategory accepts a value that already names a table category,
// ignoring spaces: "개인 사정" -> "개인사정". The default category is not
// matched here; a value naming it says nothing, so evidence still decides.
func (c *Cascade) exactCategory(value string) (string, bool) {
	v := strings.Join(strings.Fields(value), "")
	for _, cat := range c.Table.Categories() {
		if cat != "" && v == strings.Join(strings.Fields(cat), "") {
			return cat, true
		}
	}
	return "", false
}

// Contains reports whether category belongs to the cascade's closed set.
func (c *Cascade) Contains(category string) bool {
	if category == c.Default {
		return true
	}
	if c.Table == nil {
		return false
	}
	for _, cat := range c.Table.Categories() {
		if cat == category {
			return true
		}
	}
	return false
}
