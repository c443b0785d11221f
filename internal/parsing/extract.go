package parsing

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/academy-desk/internal/normalize"
	"github.com/jonathan/academy-desk/internal/types"
)

// Extract scans rawText with every rule and returns the fields it could fill.
// Fields without a match are simply absent. A field, once filled, is never
// overwritten by a later rule.
func (rs *RuleSet) Extract(rawText string) types.PartialRecord {
	rec := types.PartialRecord{}
	lines := splitLines(rawText)
	for _, cr := range rs.rules {
		rs.apply(cr, lines, rec)
	}
	return rec
}

// Derive fills PostExtract fields from values already in rec. Targets that
// are already present are left untouched.
func (rs *RuleSet) Derive(rec types.PartialRecord) {
	for _, cr := range rs.rules {
		for _, d := range cr.rule.PostExtract {
			if d.Derive == nil || !rec.Has(cr.rule.Field) {
				continue
			}
			rec.SetIfAbsent(d.Target, d.Derive(rec.String(cr.rule.Field)))
		}
	}
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func (rs *RuleSet) apply(cr *compiledRule, lines []string, rec types.PartialRecord) {
	r := cr.rule
	if r.Shape == Compound {
		if rs.applyComposite(cr, lines, rec) {
			return
		}
		for _, fb := range cr.fallback {
			rs.apply(fb, lines, rec)
		}
		return
	}

	if rec.Has(r.Field) {
		return
	}
	raw, ok := rs.capture(cr, lines)
	if !ok {
		return
	}
	store(rec, r, raw)
}

// capture returns the value for the first label (in list order) that has a
// non-empty match anywhere in the text.
func (rs *RuleSet) capture(cr *compiledRule, lines []string) (string, bool) {
	for _, re := range cr.labels {
		for i, line := range lines {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			value := m[len(m)-1]
			if cr.rule.Shape == MultiLineUntilMarker {
				value = rs.continueBlock(value, lines[i+1:])
			}
			value = strings.TrimSpace(value)
			if value != "" {
				return value, true
			}
		}
	}
	return "", false
}

// continueBlock appends following lines until a section marker, another
// recognized label, or the end of the text.
func (rs *RuleSet) continueBlock(first string, rest []string) string {
	block := []string{first}
	for _, line := range rest {
		if isSectionMarker(line) || rs.isLabelLine(line) {
			break
		}
		block = append(block, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(block, "\n"))
}

func store(rec types.PartialRecord, r ExtractionRule, raw string) {
	v := normalize.Value{Display: raw}
	if r.Normalizer != nil {
		v = r.Normalizer(raw)
	}

	switch r.Output {
	case OutputNumeric:
		rec.Set(r.Field, v.Numeric)
	case OutputBool:
		switch {
		case v.Numeric > 0:
			rec.Set(r.Field, true)
		case v.Numeric < 0:
			rec.Set(r.Field, false)
		}
	default:
		display := v.Display
		if r.Clean != nil {
			display = r.Clean(display)
		}
		if display == normalize.Placeholder {
			return
		}
		rec.Set(r.Field, display)
	}
}

// datePattern matches a year-month-day or year-month date with ".", "/", "-"
// or 년/월/일 separators.
const datePattern = `\d{2,4}` + hs + `*[./\-년]` + hs + `*\d{1,2}(?:` +
	hs + `*[./\-월]` + hs + `*\d{1,2}(?:` + hs + `*일|\.)?|` + hs + `*월|\.)?`

// openEndPattern marks a period that is still running ("2024.03 ~ 현재").
const openEndPattern = `현재|지금|재원` + hs + `*중|수강` + hs + `*중|진행` + hs + `*중`

// compositeRangeRE matches "start ~ end (N개월)"; the duration is optional.
var compositeRangeRE = regexp.MustCompile(`^(` + datePattern + `)` + hs + `*(?:[~∼〜～–—]|` + hs + `-` + hs + `|부터)` + hs + `*(` + datePattern + `|` + openEndPattern + `)(?:` + hs + `*(?:까지)?` + hs + `*[(（]` + hs + `*(?:약` + hs + `*)?(\d+)` + hs + `*개월[^)）]*[)）])?`)

func (rs *RuleSet) applyComposite(cr *compiledRule, lines []string, rec types.PartialRecord) bool {
	c := cr.rule.Composite
	if c == nil {
		return false
	}
	for _, re := range cr.labels {
		for _, line := range lines {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			rm := compositeRangeRE.FindStringSubmatch(strings.TrimSpace(m[len(m)-1]))
			if rm == nil {
				continue
			}
			start := normalize.Date(rm[1]).Display
			end := ""
			if strings.ContainsAny(rm[2], "0123456789") {
				end = normalize.Date(rm[2]).Display
			}
			rec.SetIfAbsent(c.StartField, start)
			rec.SetIfAbsent(c.EndField, end)
			if c.DurationField != "" {
				duration := rm[3]
				if duration != "" {
					duration = normalize.Months(duration).Display
				} else if n, ok := MonthsBetween(start, end); ok {
					duration = strconv.Itoa(n)
				}
				rec.SetIfAbsent(c.DurationField, duration)
			}
			return true
		}
	}
	return false
}

var dateLayouts = []string{"2006-1-2", "06-1-2", "2006-1", "06-1"}

// MonthsBetween counts whole calendar months from start to end, both given
// as normalized dates. A year-month date counts from the first of the month. It reports false when either date does not parse or
// the range is not positive.
func MonthsBetween(start, end string) (int, bool) {
	s, ok := parseDate(start)
	if !ok {
		return 0, false
	}
	e, ok := parseDate(end)
	if !ok {
		return 0, false
	}
	months := (e.Year()-s.Year())*12 + int(e.Month()-s.Month())
	if e.Day() < s.Day() {
		months--
	}
	if months <= 0 {
		return 0, false
	}
	return months, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
