package objectschema

import "context"

// Document pairs a schema with candidate data. The data is read in place and
// never modified; it may be a map with string keys, a struct, or a pointer
// to either.
type Document struct {
	schema *Schema
	data   any
	opt    ValidateOpt
}

// NewDocument wraps data for validation against s.
func NewDocument(s *Schema, data any, opts ...ValidateOpt) *Document {
	return &Document{schema: s, data: data, opt: lastOpt(opts)}
}

func (d *Document) Schema() *Schema { return d.schema }
func (d *Document) Data() any       { return d.data }

// Validate walks the data against the schema and returns the report. Data
// failures never produce an error; an error means a validator or the schema
// configuration is broken.
func (d *Document) Validate(ctx context.Context) (Report, error) {
	if d.schema == nil {
		return nil, configError("", "", "", "document has no schema", ErrNilSchema)
	}
	return newWalker(d.opt).run(ctx, d.schema, d.data)
}

// IsValid runs Validate and folds the report.
func (d *Document) IsValid(ctx context.Context) (bool, error) {
	rep, err := d.Validate(ctx)
	if err != nil {
		return false, err
	}
	return rep.Valid(), nil
}

// Check runs Validate and returns a *ValidationError when the report is not
// valid.
func (d *Document) Check(ctx context.Context) error {
	rep, err := d.Validate(ctx)
	if err != nil {
		return err
	}
	if ve := NewValidationError(rep); ve != nil {
		return ve
	}
	return nil
}
