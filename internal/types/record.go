// Package types provides type definitions for structured data used throughout the academy-desk system.
package types

import (
	"sort"
	"strconv"
	"strings"
)

// PartialRecord is a sparse field -> value mapping produced by one extraction.
// Values are string, float64 or bool. A missing key means "not determined";
// empty placeholders are never stored.
type PartialRecord map[string]any

// Has reports whether the field holds a non-empty value.
func (r PartialRecord) Has(field string) bool {
	v, ok := r[field]
	return ok && !isEmpty(v)
}

// String returns the field rendered as text, or "" when absent.
func (r PartialRecord) String(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Set stores value under field unless the value is empty.
// Returns true if the value was stored.
func (r PartialRecord) Set(field string, value any) bool {
	if field == "" || isEmpty(value) {
		return false
	}
	r[field] = value
	return true
}

// SetIfAbsent stores value only when field is not already filled.
func (r PartialRecord) SetIfAbsent(field string, value any) bool {
	if r.Has(field) {
		return false
	}
	return r.Set(field, value)
}

// Compact returns a copy with every empty value removed.
func (r PartialRecord) Compact() PartialRecord {
	out := make(PartialRecord, len(r))
	for k, v := range r {
		if k == "" || isEmpty(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// Fields returns the record's keys in sorted order.
func (r PartialRecord) Fields() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormState collapses the record into the string map a form binds to.
// Every listed field is present; absent fields become "".
// Fields held by the record but not listed are included as well.
func (r PartialRecord) FormState(fields []string) map[string]string {
	state := make(map[string]string, len(fields)+len(r))
	for _, f := range fields {
		state[f] = ""
	}
	for k, v := range r {
		if isEmpty(v) {
			continue
		}
		state[k] = FormatValue(v)
	}
	return state
}

// FormatValue renders a record value the way a form field displays it.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return val == 0
	case int:
		return val == 0
	case bool:
		// false is a determined answer for yes/no fields
		return false
	default:
		return false
	}
}
