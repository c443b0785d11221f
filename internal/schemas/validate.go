// Package schemas checks decoded documents, such as custom rule files,
// against JSON Schemas.
package schemas

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Rules is the JSON Schema for label/keyword rule files.
//
//go:embed rules.schema.json
var Rules string

// Violation is one place where a document breaks its schema. Path is a
// dotted path such as "fields.0.labels", or "(root)".
type Violation struct {
	Path    string
	Message string
}

// ValidationError lists every violation found in a document, sorted by path.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Path+": "+v.Message)
	}
	noun := "violations"
	if len(parts) == 1 {
		noun = "violation"
	}
	return fmt.Sprintf("%s schema: %d %s: %s", e.Schema, len(parts), noun, strings.Join(parts, "; "))
}

// SchemaError means the schema itself could not be compiled.
type SchemaError struct {
	Schema string
	Cause  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid %s schema: %v", e.Schema, e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses schema content. name only labels errors.
func Compile(name, content string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaError{Schema: name, Cause: err}
	}
	return &Schema{name: name, schema: s}, nil
}

// Validate checks an already decoded document (maps, slices and scalars, as
// produced by encoding/json or yaml.v3).
func (s *Schema) Validate(doc any) error {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: s.name}
	for _, desc := range result.Errors() {
		verr.Violations = append(verr.Violations, Violation{Path: desc.Field(), Message: desc.Description()})
	}
	sort.SliceStable(verr.Violations, func(i, j int) bool {
		return verr.Violations[i].Path < verr.Violations[j].Path
	})
	return verr
}

var rulesSchema = sync.OnceValues(func() (*Schema, error) {
	return Compile("rules", Rules)
})

// ValidateRules checks a decoded rule file against the embedded rule schema.
func ValidateRules(doc any) error {
	s, err := rulesSchema()
	if err != nil {
		return err
	}
	return s.Validate(doc)
}
