package tool

import (
	"fmt"
	"math"
)

// Args holds one call's arguments after schema validation. Every declared
// field is present with a concretely typed value; the record lives for the
// duration of a single dispatch and is not retained.
type Args map[string]any

// String returns a validated string field.
func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

// Bool returns a validated boolean field.
func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

// Int returns a validated integer field.
func (a Args) Int(name string) int64 {
	v, _ := a[name].(int64)
	return v
}

// StringList returns a validated list-of-strings field.
func (a Args) StringList(name string) []string {
	v, _ := a[name].([]string)
	return v
}

// Validate checks a raw argument bag against a schema and produces a fully
// typed Args record. Unknown extra fields are ignored; this mirrors the
// permissive validation existing callers rely on. Type mismatches are never
// silently cast.
func Validate(schema Schema, raw map[string]any) (Args, error) {
	args := make(Args, len(schema.Fields))
	for _, field := range schema.Fields {
		value, present := raw[field.Name]
		if !present || value == nil {
			if field.Required {
				return nil, fmt.Errorf("missing required field %q", field.Name)
			}
			args[field.Name] = defaultValue(field)
			continue
		}

		typed, err := coerce(field, value)
		if err != nil {
			return nil, err
		}
		args[field.Name] = typed
	}
	return args, nil
}

func defaultValue(field FieldSpec) any {
	if field.Default == nil {
		switch field.Type {
		case TypeString:
			return ""
		case TypeInteger:
			return int64(0)
		case TypeBoolean:
			return false
		case TypeArray:
			return []string(nil)
		}
		return nil
	}
	// Normalize declared defaults to the runtime representation.
	if field.Type == TypeInteger {
		if n, ok := asInt64(field.Default); ok {
			return n
		}
	}
	return field.Default
}

func coerce(field FieldSpec, value any) (any, error) {
	switch field.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, typeMismatch(field.Name, "string", value)
		}
		return s, nil
	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, typeMismatch(field.Name, "boolean", value)
		}
		return b, nil
	case TypeInteger:
		n, ok := asInt64(value)
		if !ok {
			return nil, typeMismatch(field.Name, "integer", value)
		}
		return n, nil
	case TypeArray:
		list, ok := value.([]any)
		if !ok {
			if typed, isTyped := value.([]string); isTyped {
				return typed, nil
			}
			return nil, typeMismatch(field.Name, "array of strings", value)
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, typeMismatch(field.Name, "array of strings", value)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %q has unsupported type %q", field.Name, field.Type)
	}
}

func typeMismatch(name, want string, got any) error {
	return fmt.Errorf("field %q must be a %s, got %T", name, want, got)
}

// asInt64 accepts native integer types and JSON numbers with an integral
// value. Fractional numbers, booleans, and strings are rejected.
func asInt64(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
