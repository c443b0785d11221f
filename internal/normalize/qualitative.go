package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// MaxRating is the top of the rating scale used for bar rendering.
const MaxRating = 5.0

// Level maps a set of descriptive phrases to one rating.
type Level struct {
	Score   float64
	Phrases []string
}

// Scale is an ordered qualitative phrase table. Levels are checked in order
// and the first phrase contained in the input wins, so a level whose phrases
// embed another level's phrases must come first.
type Scale struct {
	levels []Level
}

// NewScale builds a Scale. Phrases are stored whitespace-free and
// lower-cased; the input slice is copied.
func NewScale(levels ...Level) *Scale {
	s := &Scale{levels: make([]Level, 0, len(levels))}
	for _, lv := range levels {
		phrases := make([]string, 0, len(lv.Phrases))
		for _, p := range lv.Phrases {
			if c := compact(p); c != "" {
				phrases = append(phrases, c)
			}
		}
		s.levels = append(s.levels, Level{Score: lv.Score, Phrases: phrases})
	}
	return s
}

// DefaultScale returns the five-tier Korean rating table.
func DefaultScale() *Scale {
	return NewScale(
		Level{Score: 1, Phrases: []string{"매우 낮음", "매우 나쁨", "매우 부족", "매우 미흡", "매우 불량", "매우 불성실", "아주 나쁨", "매우 안 좋음", "매우 좋지 않음", "아주 안 좋음", "최하"}},
		Level{Score: 5, Phrases: []string{"매우 높음", "매우 좋음", "매우 우수", "매우 성실", "매우 잘함", "아주 좋음", "최상", "탁월"}},
		// Negations must precede level 4: "안 좋음" contains "좋음".
		Level{Score: 2, Phrases: []string{"낮음", "나쁨", "부족", "미흡", "불량", "불성실", "저조", "안 좋음", "좋지 않음", "안 성실", "성실하지 않음", "높지 않음", "우수하지 않음", "잘 못함", "별로"}},
		Level{Score: 4, Phrases: []string{"높음", "좋음", "우수", "양호", "성실", "잘함"}},
		Level{Score: 3, Phrases: []string{"보통", "중간", "평범", "무난"}},
	)
}

// Levels returns a copy of the scale's levels in evaluation order.
func (s *Scale) Levels() []Level {
	out := make([]Level, len(s.levels))
	copy(out, s.levels)
	return out
}

var embeddedNumberRE = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Normalize turns a rating written as a number, a sentence containing a
// number, or a descriptive phrase into a numeric score. The display keeps
// the trimmed original text.
func (s *Scale) Normalize(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback(raw)
	}

	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Value{Numeric: f, Display: trimmed}
	}

	if m := embeddedNumberRE.FindString(trimmed); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return Value{Numeric: f, Display: trimmed}
		}
	}

	c := compact(trimmed)
	for _, lv := range s.levels {
		for _, p := range lv.Phrases {
			if strings.Contains(c, p) {
				return Value{Numeric: lv.Score, Display: trimmed}
			}
		}
	}

	return fallback(raw)
}

// Default returns the shared default scale, built once.
var Default = sync.OnceValue(DefaultScale)

// Qualitative normalizes an arbitrary stored report value with the default
// scale. Numbers pass through; nil and unusable input degrade to a dash.
func Qualitative(v any) Value {
	switch val := v.(type) {
	case nil:
		return Value{Display: Placeholder}
	case string:
		return Default().Normalize(val)
	case float64:
		return fromFloat(val)
	case float32:
		return fromFloat(float64(val))
	case int:
		return fromFloat(float64(val))
	case int8:
		return fromFloat(float64(val))
	case int16:
		return fromFloat(float64(val))
	case int32:
		return fromFloat(float64(val))
	case int64:
		return fromFloat(float64(val))
	case uint:
		return fromFloat(float64(val))
	case uint8:
		return fromFloat(float64(val))
	case uint16:
		return fromFloat(float64(val))
	case uint32:
		return fromFloat(float64(val))
	case uint64:
		return fromFloat(float64(val))
	case fmt.Stringer:
		return Default().Normalize(val.String())
	default:
		return Default().Normalize(fmt.Sprint(val))
	}
}

func fromFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{Display: Placeholder}
	}
	return Value{Numeric: f, Display: strconv.FormatFloat(f, 'f', -1, 64)}
}

// BarPercent converts a rating into a bar width: numeric/5*100 clamped to [0, 100].
func BarPercent(v Value) float64 {
	p := v.Numeric / MaxRating * 100
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
