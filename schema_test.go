package objectschema_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	objectschema "github.com/reoring/objectschema"
)

func TestNewSchema_UnknownValidator(t *testing.T) {
	_, err := objectschema.NewSchema(objectschema.SchemaConfig{
		Name: "user",
		Fields: []objectschema.FieldConfig{
			{Name: "name", Type: "String", Validate: []objectschema.ValidatorConfig{{Name: "bogus"}}},
		},
	})
	ve, ok := objectschema.AsValidatorError(err)
	if !ok {
		t.Fatalf("expected *ValidatorError, got %v", err)
	}
	if !errors.Is(err, objectschema.ErrUnknownValidator) || ve.Code() != objectschema.CodeUnknownValidator {
		t.Fatalf("unexpected error: %v (code %s)", err, ve.Code())
	}
	if ve.Schema != "user" || ve.Field != "name" || ve.Validator != "bogus" {
		t.Fatalf("unexpected location: %+v", ve)
	}
}

func TestNewSchema_MalformedTypes(t *testing.T) {
	book := objectschema.MustSchema(objectschema.SchemaConfig{Name: "book"})
	cases := []struct {
		name string
		typ  any
	}{
		{"empty list", []*objectschema.Schema{}},
		{"two schemas", []*objectschema.Schema{book, book}},
		{"nil schema", (*objectschema.Schema)(nil)},
		{"missing", nil},
		{"number", 42},
		{"empty name", ""},
		{"unknown scalar", "Decimal128"},
		{"zero TypeRef", objectschema.TypeRef{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := objectschema.NewSchema(objectschema.SchemaConfig{
				Fields: []objectschema.FieldConfig{{Name: "f", Type: tc.typ}},
			})
			ve, ok := objectschema.AsValidatorError(err)
			if !ok || !errors.Is(err, objectschema.ErrMalformedType) {
				t.Fatalf("expected malformed type error, got %v", err)
			}
			if ve.Code() != objectschema.CodeMalformedType {
				t.Fatalf("code = %s", ve.Code())
			}
		})
	}
}

func TestNewSchema_DuplicateAndEmptyField(t *testing.T) {
	_, err := objectschema.NewSchema(objectschema.SchemaConfig{
		Fields: []objectschema.FieldConfig{{Name: "a", Type: "String"}, {Name: "a", Type: "Integer"}},
	})
	if !errors.Is(err, objectschema.ErrDuplicateField) {
		t.Fatalf("expected duplicate field error, got %v", err)
	}
	_, err = objectschema.NewSchema(objectschema.SchemaConfig{
		Fields: []objectschema.FieldConfig{{Type: "String"}},
	})
	if _, ok := objectschema.AsValidatorError(err); !ok {
		t.Fatalf("expected *ValidatorError for empty name, got %v", err)
	}
}

type minOnly struct{}

func (minOnly) Check(objectschema.FieldContext, any, objectschema.Options) ([]string, error) {
	return nil, nil
}

func (minOnly) CheckOptions(t objectschema.TypeRef, opts objectschema.Options) error {
	if t.IsDocument() {
		return fmt.Errorf("%w: %s", objectschema.ErrIncompatibleType, t)
	}
	if _, ok := opts["min"]; !ok {
		return errors.New("min is required")
	}
	return nil
}

func TestNewSchema_OptionsChecker(t *testing.T) {
	reg := objectschema.DefaultRegistry().Clone()
	reg.MustRegister("min", minOnly{})
	book := objectschema.MustSchema(objectschema.SchemaConfig{Name: "book"})

	_, err := objectschema.NewSchema(objectschema.SchemaConfig{
		Registry: reg,
		Fields:   []objectschema.FieldConfig{{Name: "b", Type: book, Validate: []objectschema.ValidatorConfig{objectschema.V("min", objectschema.Options{"min": 1})}}},
	})
	if ve, ok := objectschema.AsValidatorError(err); !ok || ve.Code() != objectschema.CodeIncompatibleType {
		t.Fatalf("expected incompatible type, got %v", err)
	}

	_, err = objectschema.NewSchema(objectschema.SchemaConfig{
		Registry: reg,
		Fields:   []objectschema.FieldConfig{{Name: "n", Type: "Integer", Validate: []objectschema.ValidatorConfig{{Name: "min"}}}},
	})
	if !errors.Is(err, objectschema.ErrInvalidOptions) {
		t.Fatalf("expected invalid options, got %v", err)
	}

	s, err := objectschema.NewSchema(objectschema.SchemaConfig{
		Registry: reg,
		Fields:   []objectschema.FieldConfig{{Name: "n", Type: "Integer", Validate: []objectschema.ValidatorConfig{objectschema.V("min", objectschema.Options{"min": 1})}}},
	})
	if err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}
	f, _ := s.Field("n")
	if !f.HasValidator("min") || f.Validators()[0].Options["min"] != 1 {
		t.Fatalf("validator chain not recorded: %+v", f.Validators())
	}
	if _, ok := objectschema.DefaultRegistry().Lookup("min"); ok {
		t.Fatalf("Clone must not leak into the default registry")
	}
}

func TestSchema_Accessors(t *testing.T) {
	book := objectschema.MustSchema(objectschema.SchemaConfig{Name: "book"})
	s := objectschema.MustSchema(objectschema.SchemaConfig{
		Name: "user",
		Fields: []objectschema.FieldConfig{
			{Name: "name", Type: "String"},
			{Name: "book", Type: book},
			{Name: "books", Type: []*objectschema.Schema{book}},
			{Name: "tags", Type: objectschema.Scalar("Any")},
		},
	})
	if s.Name() != "user" || s.Len() != 4 {
		t.Fatalf("name=%q len=%d", s.Name(), s.Len())
	}
	if got := fmt.Sprint(s.Names()); got != "[name book books tags]" {
		t.Fatalf("names out of declaration order: %s", got)
	}
	kinds := map[string]objectschema.Kind{}
	for _, f := range s.Fields() {
		kinds[f.Name()] = f.Type().Kind()
	}
	if kinds["name"] != objectschema.KindScalar || kinds["book"] != objectschema.KindOne || kinds["books"] != objectschema.KindMany {
		t.Fatalf("unexpected kinds: %v", kinds)
	}
	f, _ := s.Field("books")
	if f.Type().String() != "[book]" || f.Type().Schema() != book {
		t.Fatalf("unexpected list type: %s", f.Type())
	}
	if _, ok := s.Field("missing"); ok {
		t.Fatalf("unknown field resolved")
	}
}

func TestMustSchema_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	objectschema.MustSchema(objectschema.SchemaConfig{
		Fields: []objectschema.FieldConfig{{Name: "x", Type: 1}},
	})
}

func TestRegistry_RegisterRules(t *testing.T) {
	reg := objectschema.NewRegistry()
	noop := objectschema.ValidatorFunc(func(objectschema.FieldContext, any, objectschema.Options) ([]string, error) {
		return nil, nil
	})
	if err := reg.Register("", noop); err == nil {
		t.Fatalf("empty name accepted")
	}
	if err := reg.Register("x", nil); err == nil {
		t.Fatalf("nil validator accepted")
	}
	if err := reg.Register("x", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", noop); err == nil {
		t.Fatalf("duplicate accepted")
	}
	reg.Replace("x", noop)
	reg.Replace("a", noop)
	if got := fmt.Sprint(reg.Names()); got != "[a x]" {
		t.Fatalf("names = %s", got)
	}
	if _, ok := reg.Lookup("presence"); ok {
		t.Fatalf("NewRegistry must start empty")
	}
	if _, ok := objectschema.DefaultRegistry().Lookup("presence"); !ok {
		t.Fatalf("default registry must ship presence")
	}
}

func TestOptions_Decode(t *testing.T) {
	var out struct {
		Min     int    `mapstructure:"min"`
		Message string `mapstructure:"message"`
	}
	opts := objectschema.Options{"min": "3", "message": "too small"}
	if err := opts.Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Min != 3 || out.Message != "too small" {
		t.Fatalf("unexpected decode: %+v", out)
	}
	if opts.Message("presence", nil) != "too small" {
		t.Fatalf("configured message must win")
	}
	if (objectschema.Options{}).Message("presence", nil) != "is required" {
		t.Fatalf("catalog fallback missing")
	}
}

func TestTypeRegistry_Custom(t *testing.T) {
	types := objectschema.NewTypeRegistry()
	even := objectschema.ScalarFunc("Even", func(v any) error {
		f, ok := objectschema.ToFloat(v)
		if !ok || int(f)%2 != 0 {
			return errors.New("is not even")
		}
		return nil
	})
	if err := types.Register(even); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := types.Register(nil); err == nil {
		t.Fatalf("nil type accepted")
	}
	if _, ok := objectschema.DefaultTypes().Lookup("Even"); ok {
		t.Fatalf("custom type leaked into the default registry")
	}
	if _, err := objectschema.NewSchema(objectschema.SchemaConfig{
		Fields: []objectschema.FieldConfig{{Name: "n", Type: "Even"}},
	}); err == nil {
		t.Fatalf("Even must be unknown to the default registry")
	}
	s, err := objectschema.NewSchema(objectschema.SchemaConfig{
		Types:  types,
		Fields: []objectschema.FieldConfig{{Name: "n", Type: "Even"}, {Name: "s", Type: "String"}},
	})
	if err != nil {
		t.Fatalf("custom type rejected: %v", err)
	}
	rep, err := objectschema.Validate(context.Background(), s, map[string]any{"n": 3, "s": "x"},
		objectschema.ValidateOpt{StrictTypes: true})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := rep["n"].Messages; len(got) != 1 || got[0] != "is not even" {
		t.Fatalf("custom conformance message missing: %v", got)
	}
}

func TestPathRef(t *testing.T) {
	p := objectschema.RootPath().Field("books").Index(2).Field("a/b~c")
	if p.Pointer() != "/books/2/a~1b~0c" {
		t.Fatalf("pointer = %s", p.Pointer())
	}
	if p.Depth() != 3 || p.Last() != "a/b~c" {
		t.Fatalf("depth=%d last=%q", p.Depth(), p.Last())
	}
	if back := objectschema.ParsePath(p.Pointer()); back.Pointer() != p.Pointer() {
		t.Fatalf("round trip: %s", back)
	}
	if objectschema.RootPath().Pointer() != "/" {
		t.Fatalf("root pointer")
	}
}
