// Package jsonschema holds the minimal JSON Schema representation used when
// exporting objectschema schemas.
package jsonschema

// Draft is the dialect written into exported root schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	SchemaURI string `json:"$schema,omitempty"`
	Title     string `json:"title,omitempty"`

	// Core
	Type   string  `json:"type,omitempty"`
	Format string  `json:"format,omitempty"`
	Enum   []any   `json:"enum,omitempty"`
	Not    *Schema `json:"not,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Number
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`

	// Object
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`
}

// Int returns a pointer to n, for the optional bounds.
func Int(n int) *int { return &n }

// Float returns a pointer to f, for the optional bounds.
func Float(f float64) *float64 { return &f }
