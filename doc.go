// Package objectschema validates document data against declarative schemas.
//
// A Schema lists fields in declaration order. Each field has a type (a
// scalar type name, a nested Schema, or a list of a nested Schema) and a
// chain of named validators resolved through a Registry when the schema is
// built. A Document pairs a Schema with data; Validate walks the data and
// returns a Report that mirrors the schema: one entry per field with its
// messages, plus Related (nested document) or Items (collection) when the
// value was present.
//
// Design policy:
//   - The root package holds the public API and the walker over its types;
//     implementations independent of those types (JSON decoding) live under internal/.
//   - Configuration defects (unknown validator, malformed type) are *ValidatorError
//     values returned from NewSchema; invalid data is only ever described by a Report.
//   - Validators may block on I/O and run concurrently; messages of a field keep
//     declaration order.
//   - Extra validators live in validators/, schema files in schemafile/, HTTP
//     request validation in middleware/, Prometheus metrics in metrics/ and the
//     CLI in cmd/objectschema.
//
// Typical usage:
//
//	book := objectschema.MustSchema(objectschema.SchemaConfig{
//		Name: "book",
//		Fields: []objectschema.FieldConfig{
//			{Name: "title", Type: "String", Validate: []objectschema.ValidatorConfig{
//				objectschema.V("presence", objectschema.Options{"message": "is required"}),
//			}},
//		},
//	})
//	user := objectschema.MustSchema(objectschema.SchemaConfig{
//		Name: "user",
//		Fields: []objectschema.FieldConfig{
//			{Name: "book", Type: book},
//			{Name: "books", Type: []*objectschema.Schema{book}},
//		},
//	})
//	rep, err := objectschema.NewDocument(user, data).Validate(ctx)
//	ok := rep.Valid()
package objectschema
