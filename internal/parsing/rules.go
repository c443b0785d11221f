// Package parsing extracts labeled fields from loosely formatted text that
// staff paste from chat or email, such as "담당 강사: 박선생님T".
package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/academy-desk/internal/normalize"
)

// CaptureShape describes how far a field's value extends.
type CaptureShape int

const (
	// SingleLine values run to the end of the label's line.
	SingleLine CaptureShape = iota
	// MultiLineUntilMarker values continue over following lines until a
	// section marker, another recognized label, or the end of the text.
	MultiLineUntilMarker
	// Compound values decompose into several fields (a date range with a
	// duration). The composite form is tried first; Fallback rules run only
	// when it fails.
	Compound
)

func (s CaptureShape) String() string {
	switch s {
	case SingleLine:
		return "single-line"
	case MultiLineUntilMarker:
		return "multi-line-until-marker"
	case Compound:
		return "compound"
	default:
		return "unknown"
	}
}

// OutputKind selects which part of a normalized value is stored.
type OutputKind int

const (
	// OutputDisplay stores the normalized display string.
	OutputDisplay OutputKind = iota
	// OutputNumeric stores the numeric score; zero leaves the field absent.
	OutputNumeric
	// OutputBool stores true for a positive score and false for a negative one.
	OutputBool
)

// Composite names the fields a compound date-range value fills.
type Composite struct {
	StartField    string
	EndField      string
	DurationField string
}

// Derivation computes a secondary field from an extracted value.
// The target is only filled when the record does not already hold it.
type Derivation struct {
	Target string
	Derive func(value string) string
}

// ExtractionRule describes how to fill one field of a PartialRecord.
type ExtractionRule struct {
	Field       string
	Labels      []string
	Shape       CaptureShape
	Normalizer  normalize.Func
	Output      OutputKind
	Clean       func(string) string
	Composite   *Composite
	Fallback    []ExtractionRule
	PostExtract []Derivation
}

// OutputFields lists every record field the rule can produce.
func (r ExtractionRule) OutputFields() []string {
	if r.Shape != Compound {
		return []string{r.Field}
	}
	var fields []string
	if r.Composite != nil {
		for _, f := range []string{r.Composite.StartField, r.Composite.EndField, r.Composite.DurationField} {
			if f != "" {
				fields = append(fields, f)
			}
		}
	}
	for _, fb := range r.Fallback {
		fields = append(fields, fb.OutputFields()...)
	}
	return fields
}

type compiledRule struct {
	rule     ExtractionRule
	labels   []*regexp.Regexp
	fallback []*compiledRule
}

// RuleSet is a compiled, immutable extraction table. It is safe for
// concurrent use and is meant to be built once and shared.
type RuleSet struct {
	rules     []*compiledRule
	anyLabel  *regexp.Regexp
	fields    []string
	canonical map[string]string
}

// horizontal whitespace, including the no-break and ideographic spaces common in pasted text
const hs = `[ \t\x{00A0}\x{3000}]`

// bulletPrefix matches list markers that may precede a label.
const bulletPrefix = `(?:[-*+•·ㆍ‧▪▫◦○●□■◆◇▶▷►>※→✔✓]+|\d{1,2}[.)])`

// labelLinePattern returns a pattern matching a whole "<bullet><label><colon><value>" line.
// The value is the last capture group.
func labelLinePattern(labels ...string) string {
	alts := make([]string, 0, len(labels))
	for _, l := range labels {
		if p := labelPattern(l); p != "" {
			alts = append(alts, p)
		}
	}
	return `^` + hs + `*(?:` + bulletPrefix + hs + `*)?\*{0,2}(?:` + strings.Join(alts, "|") + `)\*{0,2}` +
		hs + `*[:：]\*{0,2}` + hs + `*(.*?)` + hs + `*$`
}

// labelPattern makes inner spacing of a label optional: "담당 강사" also
// matches "담당강사" and "담당  강사".
func labelPattern(label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, hs+`*`)
}

func compileRule(r ExtractionRule) *compiledRule {
	cr := &compiledRule{rule: r}
	for _, l := range r.Labels {
		if labelPattern(l) == "" {
			continue
		}
		cr.labels = append(cr.labels, regexp.MustCompile(`(?i)`+labelLinePattern(l)))
	}
	for _, fb := range r.Fallback {
		cr.fallback = append(cr.fallback, compileRule(fb))
	}
	return cr
}

// NewRuleSet compiles rules into a RuleSet. Rule order is preserved and
// decides which rule fills a field first.
func NewRuleSet(rules ...ExtractionRule) *RuleSet {
	rs := &RuleSet{canonical: make(map[string]string)}
	var allLabels []string
	seen := make(map[string]bool)

	var collect func(r ExtractionRule)
	collect = func(r ExtractionRule) {
		allLabels = append(allLabels, r.Labels...)
		if len(r.Labels) > 0 {
			if _, ok := rs.canonical[r.Field]; !ok {
				rs.canonical[r.Field] = r.Labels[0]
			}
		}
		for _, fb := range r.Fallback {
			collect(fb)
		}
	}

	for _, r := range rules {
		rs.rules = append(rs.rules, compileRule(r))
		collect(r)
		for _, f := range r.OutputFields() {
			if !seen[f] {
				seen[f] = true
				rs.fields = append(rs.fields, f)
			}
		}
		for _, d := range r.PostExtract {
			if !seen[d.Target] {
				seen[d.Target] = true
				rs.fields = append(rs.fields, d.Target)
			}
		}
	}

	if len(allLabels) > 0 {
		rs.anyLabel = regexp.MustCompile(`(?i)` + labelLinePattern(allLabels...))
	}
	return rs
}

// Fields returns every field the rule set can produce, in rule order.
func (rs *RuleSet) Fields() []string {
	out := make([]string, len(rs.fields))
	copy(out, rs.fields)
	return out
}

// Rules returns the source rules in evaluation order.
func (rs *RuleSet) Rules() []ExtractionRule {
	out := make([]ExtractionRule, 0, len(rs.rules))
	for _, cr := range rs.rules {
		out = append(out, cr.rule)
	}
	return out
}

// CanonicalLabel returns the first registered label for field.
func (rs *RuleSet) CanonicalLabel(field string) (string, bool) {
	l, ok := rs.canonical[field]
	return l, ok
}

// isLabelLine reports whether line starts a recognized field.
func (rs *RuleSet) isLabelLine(line string) bool {
	return rs.anyLabel != nil && rs.anyLabel.MatchString(line)
}

// sectionMarkerRE matches lines that open a new section of pasted text.
var sectionMarkerRE = regexp.MustCompile(`^` + hs + `*(?:\[[^\]]*\]|【[^】]*】|[■□◆◇▶▷►#]|-{3,}|={3,}|_{3,})`)

func isSectionMarker(line string) bool {
	return sectionMarkerRE.MatchString(line)
}
