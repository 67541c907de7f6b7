package objectschema

import (
	"errors"
	"fmt"
)

// SchemaConfig enumerates the fields of a schema in declaration order.
type SchemaConfig struct {
	// Name is optional; it labels logs, metrics and errors.
	Name   string
	Fields []FieldConfig
	// Registry resolves validator names. Nil means DefaultRegistry().
	Registry *Registry
	// Types resolves scalar type names. Nil means DefaultTypes().
	Types *TypeRegistry
}

// FieldConfig declares one field.
type FieldConfig struct {
	Name string
	// Type is a scalar type name (string), a *Schema, a []*Schema holding
	// exactly one schema, or a TypeRef.
	Type     any
	Validate []ValidatorConfig
}

// ValidatorConfig names a validator and its static options.
type ValidatorConfig struct {
	Name    string
	Options Options
}

// V is shorthand for a ValidatorConfig.
func V(name string, opts Options) ValidatorConfig {
	return ValidatorConfig{Name: name, Options: opts}
}

// ValidatorSpec is the read-only view of a configured validator.
type ValidatorSpec struct {
	Name    string
	Options Options
}

type boundValidator struct {
	name string
	impl Validator
	opts Options
}

// Field is the resolved descriptor of one schema field.
type Field struct {
	name       string
	typ        TypeRef
	scalar     ScalarType // nil unless typ is a scalar.
	validators []boundValidator
}

func (f *Field) Name() string  { return f.name }
func (f *Field) Type() TypeRef { return f.typ }

// Validators lists the validator chain in declaration order.
func (f *Field) Validators() []ValidatorSpec {
	out := make([]ValidatorSpec, len(f.validators))
	for i, bv := range f.validators {
		out[i] = ValidatorSpec{Name: bv.name, Options: bv.opts.Clone()}
	}
	return out
}

// HasValidator reports whether the chain contains name.
func (f *Field) HasValidator(name string) bool {
	for _, bv := range f.validators {
		if bv.name == name {
			return true
		}
	}
	return false
}

// Schema is an immutable, ordered set of field descriptors. A Schema holds no
// data and is safe to share between concurrent validations.
type Schema struct {
	name   string
	fields []*Field
	index  map[string]int
}

// NewSchema resolves the configuration eagerly. Unknown validators, malformed
// or unknown types, duplicate fields and validator options rejected by an
// OptionsChecker fail with *ValidatorError.
func NewSchema(cfg SchemaConfig) (*Schema, error) {
	reg := cfg.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	types := cfg.Types
	if types == nil {
		types = DefaultTypes()
	}
	s := &Schema{
		name:   cfg.Name,
		fields: make([]*Field, 0, len(cfg.Fields)),
		index:  make(map[string]int, len(cfg.Fields)),
	}
	for _, fc := range cfg.Fields {
		f, err := resolveField(cfg.Name, fc, reg, types)
		if err != nil {
			return nil, err
		}
		if _, dup := s.index[f.name]; dup {
			return nil, configError(cfg.Name, f.name, "", "declared twice", ErrDuplicateField)
		}
		s.index[f.name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error. Intended for package-level
// schema variables.
func MustSchema(cfg SchemaConfig) *Schema {
	s, err := NewSchema(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

func resolveField(schema string, fc FieldConfig, reg *Registry, types *TypeRegistry) (*Field, error) {
	if fc.Name == "" {
		return nil, configError(schema, "", "", "field name is empty", ErrMalformedType)
	}
	typ, err := typeRefOf(fc.Type)
	if err != nil {
		return nil, configError(schema, fc.Name, "", "", err)
	}
	f := &Field{name: fc.Name, typ: typ}
	if typ.kind == KindScalar {
		st, ok := types.Lookup(typ.name)
		if !ok {
			return nil, configError(schema, fc.Name, "", fmt.Sprintf("unknown scalar type %q", typ.name), ErrMalformedType)
		}
		f.scalar = st
	}
	for _, vc := range fc.Validate {
		impl, ok := reg.Lookup(vc.Name)
		if !ok {
			return nil, configError(schema, fc.Name, vc.Name, "", ErrUnknownValidator)
		}
		opts := vc.Options.Clone()
		if oc, ok := impl.(OptionsChecker); ok {
			if err := oc.CheckOptions(typ, opts); err != nil {
				if !errors.Is(err, ErrIncompatibleType) && !errors.Is(err, ErrInvalidOptions) {
					err = fmt.Errorf("%w: %w", ErrInvalidOptions, err)
				}
				return nil, configError(schema, fc.Name, vc.Name, "", err)
			}
		}
		f.validators = append(f.validators, boundValidator{name: vc.Name, impl: impl, opts: opts})
	}
	return f, nil
}

// Name returns the configured name, possibly empty.
func (s *Schema) Name() string { return s.name }

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the descriptors in declaration order.
func (s *Schema) Fields() []*Field {
	return append([]*Field(nil), s.fields...)
}

// Field returns the descriptor for name.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Names returns field names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

func (s *Schema) label() string {
	if s == nil {
		return "<nil>"
	}
	if s.name != "" {
		return s.name
	}
	return "schema"
}
