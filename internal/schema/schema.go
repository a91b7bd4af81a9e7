package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldType is the declared type of a schema field.
type FieldType string

const (
	TypeString      FieldType = "string"
	TypeStringArray FieldType = "array"
	TypeNumber      FieldType = "number"
)

// Field is one declarative field descriptor. The résumé and job-offer schemas
// are plain data built from these; a single generic validator interprets them.
type Field struct {
	Name        string
	Type        FieldType
	Default     any      // substituted on absence; nil means plain optional
	Enum        []string // allowed values when non-empty (string fields only)
	Description string   // surfaced to the model in the system prompt
}

// Schema is a static target contract for one entity type. Safe for concurrent
// use; compilation happens once.
type Schema struct {
	Name   string
	Fields []Field

	once       sync.Once
	compiled   *jsonschema.Schema
	compileErr error
}

func New(name string, fields []Field) *Schema {
	return &Schema{Name: name, Fields: fields}
}

// FieldError is one validation failure, ordered as reported by the validator.
type FieldError struct {
	Path    string `json:"fieldPath"`
	Message string `json:"message"`
}

// Outcome is the result of one validation pass.
type Outcome struct {
	Valid  bool
	Data   map[string]any
	Errors []FieldError
}

// JSONSchema renders the descriptor list as a JSON-Schema map (draft 2020-12
// subset), used both as the validation contract and inside prompts.
// Default-bearing fields are NOT listed as required: absence is handled by
// default substitution, never flagged.
func (s *Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		switch f.Type {
		case TypeStringArray:
			props[f.Name] = map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			}
		case TypeNumber:
			props[f.Name] = map[string]any{"type": "number"}
		default:
			p := map[string]any{"type": "string"}
			if len(f.Enum) > 0 {
				p["enum"] = f.Enum
			}
			props[f.Name] = p
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		b, err := json.Marshal(s.JSONSchema())
		if err != nil {
			s.compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
			s.compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		s.compiled, s.compileErr = compiler.Compile("schema.json")
	})
	return s.compiled, s.compileErr
}

// Validate checks data against the schema. Default-bearing fields are
// substituted on absence before validation; all other fields are optional and
// their absence is never an error. The input map is not mutated.
func (s *Schema) Validate(data map[string]any) (Outcome, error) {
	compiled, err := s.compile()
	if err != nil {
		return Outcome{}, err
	}

	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, f := range s.Fields {
		if f.Default == nil {
			continue
		}
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f.Default
		}
	}

	if err := compiled.Validate(roundTrip(out)); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return Outcome{Valid: false, Errors: flatten(ve)}, nil
		}
		return Outcome{}, err
	}
	return Outcome{Valid: true, Data: out}, nil
}

// roundTrip re-encodes through encoding/json so the validator sees the same
// value shapes (float64 numbers, []any arrays) a wire payload would have.
func roundTrip(m map[string]any) any {
	b, err := json.Marshal(m)
	if err != nil {
		return m
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return m
	}
	return v
}

// flatten collects leaf causes in reported order as fieldPath/message pairs.
func flatten(ve *jsonschema.ValidationError) []FieldError {
	if len(ve.Causes) == 0 {
		return []FieldError{{Path: ve.InstanceLocation, Message: ve.Message}}
	}
	var out []FieldError
	for _, c := range ve.Causes {
		out = append(out, flatten(c)...)
	}
	return out
}

// FieldNames returns the declared field names in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// KnownFields reports the declared field name set.
func (s *Schema) KnownFields() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		set[f.Name] = struct{}{}
	}
	return set
}
