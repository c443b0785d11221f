// Package normalize converts single raw values typed or pasted by staff into
// canonical forms. Every function here is total: unparseable input degrades to
// a zero numeric and a best-effort display string instead of an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder is the display string used when no readable text remains.
const Placeholder = "-"

// Value is the normalized form of one raw scalar.
// Numeric is 0 when the input has no numeric meaning.
type Value struct {
	Numeric float64 `json:"numeric"`
	Display string  `json:"display"`
}

// Func normalizes one raw string.
type Func func(raw string) Value

// fallback is the degraded result for input nothing else applies to.
func fallback(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{Display: Placeholder}
	}
	return Value{Display: trimmed}
}

var (
	dateSeparatorRE = regexp.MustCompile(`\s*[./\-]\s*`)
	koreanDateRE    = regexp.MustCompile(`(\d{2,4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일?`)
	koreanMonthRE   = regexp.MustCompile(`(\d{2,4})\s*년\s*(\d{1,2})\s*월`)
)

// Date canonicalizes date separators to "-" ("2024.03.01" -> "2024-03-01").
// Calendar correctness is not checked.
func Date(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fallback(raw)
	}
	s = koreanDateRE.ReplaceAllString(s, "$1-$2-$3")
	s = koreanMonthRE.ReplaceAllString(s, "$1-$2")
	s = dateSeparatorRE.ReplaceAllString(s, "-")
	s = strings.Trim(s, "- ")
	if s == "" {
		return fallback(raw)
	}
	return Value{Display: s}
}

// Phone regroups a phone number: 11 digits as 3-4-4, 10 digits as 3-3-4.
// Any other digit count is returned as bare digits, and text without digits
// is not a number at all.
func Phone(raw string) Value {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch len(digits) {
	case 0:
		return Value{Display: Placeholder}
	case 11:
		return Value{Display: digits[:3] + "-" + digits[3:7] + "-" + digits[7:]}
	case 10:
		return Value{Display: digits[:3] + "-" + digits[3:6] + "-" + digits[6:]}
	default:
		return Value{Display: digits}
	}
}

var (
	monthCountRE = regexp.MustCompile(`(?:^|\D)(\d{1,3})\s*개월`)
	integerRE    = regexp.MustCompile(`\d+`)
)

// Months reads a month count: the number before "개월" ("약 10개월" -> "10"),
// or a lone number of at most three digits. Dates and other multi-number
// text are not counts and degrade to the trimmed input.
func Months(raw string) Value {
	digits := ""
	if m := monthCountRE.FindStringSubmatch(raw); m != nil {
		digits = m[1]
	} else if nums := integerRE.FindAllString(raw, -1); len(nums) == 1 && len(nums[0]) <= 3 {
		digits = nums[0]
	}
	if digits == "" {
		return fallback(raw)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return fallback(raw)
	}
	return Value{Numeric: float64(n), Display: strconv.Itoa(n)}
}

// Negative phrases are checked first: "불가능" contains "가능".
var (
	noPhrases  = []string{"없음", "없다", "없어", "불가", "낮음", "아니", "no", "x"}
	yesPhrases = []string{"있음", "있다", "있어", "가능", "높음", "예", "네", "yes", "o"}
)

// YesNo reads an affirmative or negative answer.
// Numeric is 1 for yes, -1 for no and 0 when undetermined.
func YesNo(raw string) Value {
	s := compact(raw)
	if s == "" {
		return fallback(raw)
	}
	for _, p := range noPhrases {
		if s == p || (len([]rune(p)) > 1 && strings.Contains(s, p)) {
			return Value{Numeric: -1, Display: strings.TrimSpace(raw)}
		}
	}
	for _, p := range yesPhrases {
		if s == p || (len([]rune(p)) > 1 && strings.Contains(s, p)) {
			return Value{Numeric: 1, Display: strings.TrimSpace(raw)}
		}
	}
	return fallback(raw)
}

// compact lower-cases s and drops all whitespace so "매우낮음" and
// "매우  낮음" compare equal.
func compact(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

// ByName returns the normalizer registered under name.
func ByName(name string) (Func, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "date":
		return Date, true
	case "phone":
		return Phone, true
	case "months":
		return Months, true
	case "yesno":
		return YesNo, true
	case "qualitative", "rating":
		return Default().Normalize, true
	default:
		return nil, false
	}
}
