// Package rulefile loads custom extraction and classification tables from
// JSON or YAML files so an academy can adapt labels and reason keywords
// without rebuilding the binary.
package rulefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/academy-desk/internal/classify"
	"github.com/jonathan/academy-desk/internal/intake"
	"github.com/jonathan/academy-desk/internal/normalize"
	"github.com/jonathan/academy-desk/internal/parsing"
	"github.com/jonathan/academy-desk/internal/schemas"
)

// File is the on-disk rule file format.
type File struct {
	CategoryField  string          `json:"category_field,omitempty"`
	Fields         []FieldSpec     `json:"fields"`
	Classification *Classification `json:"classification,omitempty"`
}

// FieldSpec describes one extraction rule.
type FieldSpec struct {
	Field      string         `json:"field"`
	Labels     []string       `json:"labels"`
	Shape      string         `json:"shape,omitempty"`
	Normalizer string         `json:"normalizer,omitempty"`
	Output     string         `json:"output,omitempty"`
	Clean      string         `json:"clean,omitempty"`
	Composite  *CompositeSpec `json:"composite,omitempty"`
	Fallback   []FieldSpec    `json:"fallback,omitempty"`
	Derive     []DeriveSpec   `json:"derive,omitempty"`
}

// CompositeSpec names the fields a compound date range fills.
type CompositeSpec struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration,omitempty"`
}

// DeriveSpec fills Target from the field's value with a named derivation.
type DeriveSpec struct {
	Target string `json:"target"`
	Using  string `json:"using"`
}

// Classification describes the category cascade.
type Classification struct {
	ExplicitFields []string        `json:"explicit_fields,omitempty"`
	EvidenceFields []string        `json:"evidence_fields,omitempty"`
	Default        string          `json:"default"`
	Rules          []classify.Rule `json:"rules"`
}

// Set is a loaded, compiled rule file.
type Set struct {
	Path          string
	Rules         *parsing.RuleSet
	Cascade       *classify.Cascade
	CategoryField string
}

// Assembler returns an intake Assembler using the set's tables.
func (s *Set) Assembler() *intake.Assembler {
	return intake.New(
		intake.WithRules(s.Rules),
		intake.WithCascade(s.Cascade),
		intake.WithCategoryField(s.CategoryField),
	)
}

var cleaners = map[string]func(string) string{
	"strip-role-suffix": parsing.StripRoleSuffix,
}

var derivations = map[string]func(string) string{
	"grade-from-class": parsing.GradeFromClassName,
}

// Load reads, validates and compiles a rule file. The format is chosen by
// extension: .yaml/.yml are YAML, anything else JSON.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read rule file", Cause: err}
	}

	set, err := Parse(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Message: "invalid rule file", Cause: err}
	}
	set.Path = path
	return set, nil
}

// Parse decodes rule file content. ext selects the format (".yaml", ".yml"
// or ".json").
func Parse(data []byte, ext string) (*Set, error) {
	var doc any
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Message: "failed to parse JSON", Cause: err}
		}
	}

	if err := schemas.ValidateRules(doc); err != nil {
		return nil, &LoadError{Message: "rule file does not match schema", Cause: err}
	}

	// Round-trip through JSON so YAML and JSON share one decoder.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, &LoadError{Message: "failed to normalize rule file", Cause: err}
	}
	var f File
	if err := json.Unmarshal(normalized, &f); err != nil {
		return nil, &LoadError{Message: "failed to decode rule file", Cause: err}
	}

	return Build(f)
}

// Build compiles a decoded File.
func Build(f File) (*Set, error) {
	rules := make([]parsing.ExtractionRule, 0, len(f.Fields))
	for i, spec := range f.Fields {
		r, err := buildRule(spec, fmt.Sprintf("fields[%d]", i))
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	set := &Set{
		Rules:         parsing.NewRuleSet(rules...),
		CategoryField: f.CategoryField,
	}

	if c := f.Classification; c != nil {
		set.Cascade = &classify.Cascade{
			Table:          classify.NewTable(c.Rules...),
			ExplicitFields: c.ExplicitFields,
			EvidenceFields: c.EvidenceFields,
			Default:        c.Default,
		}
		if set.CategoryField == "" {
			set.CategoryField = parsing.FieldReasonCategory
		}
	} else {
		// Without a classification section the file only extracts.
		set.Cascade = &classify.Cascade{}
		set.CategoryField = ""
	}

	return set, nil
}

func buildRule(spec FieldSpec, path string) (parsing.ExtractionRule, error) {
	r := parsing.ExtractionRule{Field: spec.Field, Labels: spec.Labels}

	switch spec.Shape {
	case "", "single-line":
		r.Shape = parsing.SingleLine
	case "multi-line":
		r.Shape = parsing.MultiLineUntilMarker
	case "compound":
		r.Shape = parsing.Compound
	default:
		return r, &ValidationError{Field: path + ".shape", Message: fmt.Sprintf("unknown shape %q", spec.Shape)}
	}

	if spec.Normalizer != "" {
		fn, ok := normalize.ByName(spec.Normalizer)
		if !ok {
			return r, &ValidationError{Field: path + ".normalizer", Message: fmt.Sprintf("unknown normalizer %q", spec.Normalizer)}
		}
		r.Normalizer = fn
	}

	switch spec.Output {
	case "", "display":
		r.Output = parsing.OutputDisplay
	case "numeric":
		r.Output = parsing.OutputNumeric
	case "bool":
		r.Output = parsing.OutputBool
	default:
		return r, &ValidationError{Field: path + ".output", Message: fmt.Sprintf("unknown output %q", spec.Output)}
	}
	if r.Output != parsing.OutputDisplay && r.Normalizer == nil {
		return r, &ValidationError{Field: path + ".output", Message: "numeric and bool output need a normalizer"}
	}

	if spec.Clean != "" {
		fn, ok := cleaners[spec.Clean]
		if !ok {
			return r, &ValidationError{Field: path + ".clean", Message: fmt.Sprintf("unknown cleaner %q", spec.Clean)}
		}
		r.Clean = fn
	}

	if spec.Composite != nil {
		if r.Shape != parsing.Compound {
			return r, &ValidationError{Field: path + ".composite", Message: "composite requires shape \"compound\""}
		}
		r.Composite = &parsing.Composite{
			StartField:    spec.Composite.Start,
			EndField:      spec.Composite.End,
			DurationField: spec.Composite.Duration,
		}
	}
	if r.Shape == parsing.Compound && r.Composite == nil {
		return r, &ValidationError{Field: path, Message: "compound shape requires a composite"}
	}

	for i, fb := range spec.Fallback {
		built, err := buildRule(fb, fmt.Sprintf("%s.fallback[%d]", path, i))
		if err != nil {
			return r, err
		}
		r.Fallback = append(r.Fallback, built)
	}

	for i, d := range spec.Derive {
		fn, ok := derivations[d.Using]
		if !ok {
			return r, &ValidationError{Field: fmt.Sprintf("%s.derive[%d]", path, i), Message: fmt.Sprintf("unknown derivation %q", d.Using)}
		}
		r.PostExtract = append(r.PostExtract, parsing.Derivation{Target: d.Target, Derive: fn})
	}

	return r, nil
}
