package tool

// Field type literals used by tool input schemas.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// FieldSpec describes one declared input field of a tool.
type FieldSpec struct {
	Name        string
	Type        string
	Required    bool
	Default     any
	Description string
	Items       *FieldSpec
}

// Schema is the ordered set of declared input fields for one tool.
// Immutable once constructed; built from static definitions at startup.
type Schema struct {
	Fields []FieldSpec
}

// Field returns the declared spec for a field name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// JSONSchema renders the schema as a JSON-Schema style document for
// catalog listings: type/properties/required.
func (s Schema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))

	for _, f := range s.Fields {
		prop := map[string]any{"type": f.Type}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		if f.Default != nil {
			prop["default"] = f.Default
		}
		if f.Type == TypeArray && f.Items != nil {
			prop["items"] = map[string]any{"type": f.Items.Type}
		}
		properties[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// StringField is a shorthand for a required string field.
func StringField(name, description string) FieldSpec {
	return FieldSpec{Name: name, Type: TypeString, Required: true, Description: description}
}

// OptionalStringField is a shorthand for an optional string field with a default.
func OptionalStringField(name, description string, def string) FieldSpec {
	return FieldSpec{Name: name, Type: TypeString, Default: def, Description: description}
}

// OptionalBoolField is a shorthand for an optional boolean field with a default.
func OptionalBoolField(name, description string, def bool) FieldSpec {
	return FieldSpec{Name: name, Type: TypeBoolean, Default: def, Description: description}
}

// OptionalIntField is a shorthand for an optional integer field with a default.
func OptionalIntField(name, description string, def int64) FieldSpec {
	return FieldSpec{Name: name, Type: TypeInteger, Default: def, Description: description}
}
