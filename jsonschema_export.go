package objectschema

import (
	js "github.com/reoring/objectschema/jsonschema"
)

// JSONSchemaContributor is implemented by validators that can describe their
// constraint in JSON Schema terms. prop is the property schema of the field.
type JSONSchemaContributor interface {
	ContributeJSONSchema(t TypeRef, opts Options, prop *js.Schema)
}

// JSONSchema projects the schema into JSON Schema. Fields carrying
// "presence" become required; nested documents are inlined.
func (s *Schema) JSONSchema() *js.Schema {
	out := s.objectSchema()
	out.SchemaURI = js.Draft
	out.Title = s.name
	return out
}

func (s *Schema) objectSchema() *js.Schema {
	out := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(s.fields))}
	for _, f := range s.fields {
		prop := f.typeSchema()
		for _, bv := range f.validators {
			if bv.name == "presence" {
				out.Required = append(out.Required, f.name)
				continue
			}
			if c, ok := bv.impl.(JSONSchemaContributor); ok {
				c.ContributeJSONSchema(f.typ, bv.opts, prop)
			}
		}
		out.Properties[f.name] = prop
	}
	return out
}

func (f *Field) typeSchema() *js.Schema {
	switch f.typ.kind {
	case KindOne:
		return f.typ.schema.objectSchema()
	case KindMany:
		return &js.Schema{Type: "array", Items: f.typ.schema.objectSchema()}
	}
	switch f.typ.name {
	case "String":
		return &js.Schema{Type: "string"}
	case "Integer":
		return &js.Schema{Type: "integer"}
	case "Float", "Number":
		return &js.Schema{Type: "number"}
	case "Boolean":
		return &js.Schema{Type: "boolean"}
	case "Date":
		return &js.Schema{Type: "string", Format: "date"}
	case "DateTime":
		return &js.Schema{Type: "string", Format: "date-time"}
	default:
		return &js.Schema{}
	}
}
