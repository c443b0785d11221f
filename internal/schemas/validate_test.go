package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer"}
	}
}`

func compilePerson(t *testing.T) *Schema {
	t.Helper()
	s, err := Compile("person", personSchema)
	require.NoError(t, err)
	return s
}

func TestSchema_Valid(t *testing.T) {
	s := compilePerson(t)
	assert.NoError(t, s.Validate(map[string]any{"name": "김민수", "age": 15}))
}

func TestSchema_MissingField(t *testing.T) {
	err := compilePerson(t).Validate(map[string]any{"age": 15})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "error should be ValidationError type")
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "(root)", verr.Violations[0].Path)
	assert.Contains(t, err.Error(), "person schema: 1 violation: (root)")
}

func TestSchema_ViolationsSortedByPath(t *testing.T) {
	err := compilePerson(t).Validate(map[string]any{"name": 3, "age": "fifteen"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Violations, 2)
	assert.Equal(t, "age", verr.Violations[0].Path)
	assert.Equal(t, "name", verr.Violations[1].Path)
	assert.Contains(t, err.Error(), "2 violations")
}

func TestCompile_BadSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	require.Error(t, err)

	var serr *SchemaError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "broken", serr.Schema)
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name  string
		doc   map[string]any
		valid bool
	}{
		{
			name: "minimal",
			doc: map[string]any{
				"fields": []any{map[string]any{"field": "name", "labels": []any{"학생명"}}},
			},
			valid: true,
		},
		{
			name: "full field",
			doc: map[string]any{
				"category_field": "reason_category",
				"fields": []any{map[string]any{
					"field":     "enrollment_period",
					"labels":    []any{"재원 기간"},
					"shape":     "compound",
					"composite": map[string]any{"start": "start", "end": "end", "duration": "months"},
					"fallback":  []any{map[string]any{"field": "start", "labels": []any{"등록일"}, "normalizer": "date"}},
				}},
				"classification": map[string]any{
					"default": "기타",
					"rules":   []any{map[string]any{"category": "개인사정", "keywords": []any{"이사"}}},
				},
			},
			valid: true,
		},
		{name: "no fields", doc: map[string]any{"fields": []any{}}, valid: false},
		{
			name: "unknown normalizer",
			doc: map[string]any{
				"fields": []any{map[string]any{"field": "x", "labels": []any{"x"}, "normalizer": "upper"}},
			},
			valid: false,
		},
		{
			name: "unknown property",
			doc: map[string]any{
				"fields": []any{map[string]any{"field": "x", "labels": []any{"x"}}},
				"extra":  true,
			},
			valid: false,
		},
		{
			name: "classification without default",
			doc: map[string]any{
				"fields":         []any{map[string]any{"field": "x", "labels": []any{"x"}}},
				"classification": map[string]any{"rules": []any{}},
			},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRules(tt.doc)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
