package objectschema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// Kind discriminates the three shapes a field type can take.
type Kind uint8

const (
	KindScalar Kind = iota + 1 // Named scalar type such as "String".
	KindOne                    // At most one sub-document.
	KindMany                   // Sequence of sub-documents.
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindOne:
		return "one"
	case KindMany:
		return "many"
	default:
		return "invalid"
	}
}

// TypeRef is the resolved type of a field. Build it with Scalar, One or Many;
// the zero value is invalid.
type TypeRef struct {
	kind   Kind
	name   string
	schema *Schema
}

// Scalar references a scalar type by name.
func Scalar(name string) TypeRef { return TypeRef{kind: KindScalar, name: name} }

// One references a single nested document described by s.
func One(s *Schema) TypeRef { return TypeRef{kind: KindOne, schema: s} }

// Many references a sequence of nested documents described by s.
func Many(s *Schema) TypeRef { return TypeRef{kind: KindMany, schema: s} }

func (t TypeRef) Kind() Kind      { return t.kind }
func (t TypeRef) Name() string    { return t.name }
func (t TypeRef) Schema() *Schema { return t.schema }

// IsDocument reports whether the type nests sub-documents.
func (t TypeRef) IsDocument() bool { return t.kind == KindOne || t.kind == KindMany }

func (t TypeRef) String() string {
	switch t.kind {
	case KindScalar:
		return t.name
	case KindOne:
		return t.schema.label()
	case KindMany:
		return "[" + t.schema.label() + "]"
	default:
		return "<invalid>"
	}
}

// typeRefOf resolves the loosely typed FieldConfig.Type.
func typeRefOf(v any) (TypeRef, error) {
	switch t := v.(type) {
	case TypeRef:
		if t.kind == 0 || (t.IsDocument() && t.schema == nil) || (t.kind == KindScalar && t.name == "") {
			return TypeRef{}, ErrMalformedType
		}
		return t, nil
	case string:
		if t == "" {
			return TypeRef{}, ErrMalformedType
		}
		return Scalar(t), nil
	case *Schema:
		if t == nil {
			return TypeRef{}, ErrMalformedType
		}
		return One(t), nil
	case []*Schema:
		if len(t) != 1 || t[0] == nil {
			return TypeRef{}, fmt.Errorf("%w: a list type must hold exactly one schema, got %d", ErrMalformedType, len(t))
		}
		return Many(t[0]), nil
	case nil:
		return TypeRef{}, fmt.Errorf("%w: missing type", ErrMalformedType)
	default:
		return TypeRef{}, fmt.Errorf("%w: unsupported %T", ErrMalformedType, v)
	}
}

// ScalarType checks conformance of a present value to a named scalar type.
// Casting is not part of the contract; Conforms only answers yes or no.
type ScalarType interface {
	Name() string
	Conforms(v any) error
}

// ScalarFunc adapts a function into a ScalarType.
func ScalarFunc(name string, fn func(v any) error) ScalarType { return scalarFunc{name: name, fn: fn} }

type scalarFunc struct {
	name string
	fn   func(any) error
}

func (s scalarFunc) Name() string         { return s.name }
func (s scalarFunc) Conforms(v any) error { return s.fn(v) }

// TypeRegistry maps scalar type names to their conformance rules.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]ScalarType
}

// NewTypeRegistry returns a registry holding the built-in scalar types.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{types: make(map[string]ScalarType)}
	for _, st := range builtinScalars() {
		r.types[st.Name()] = st
	}
	return r
}

var defaultTypes = NewTypeRegistry()

// DefaultTypes returns the process-wide scalar type registry.
func DefaultTypes() *TypeRegistry { return defaultTypes }

// Register adds or replaces a scalar type.
func (r *TypeRegistry) Register(st ScalarType) error {
	if st == nil || st.Name() == "" {
		return fmt.Errorf("objectschema: cannot register unnamed scalar type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[st.Name()] = st
	return nil
}

// Lookup returns the scalar type registered under name.
func (r *TypeRegistry) Lookup(name string) (ScalarType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.types[name]
	return st, ok
}

// Names lists registered type names in sorted order.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for n := range r.types {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func builtinScalars() []ScalarType {
	return []ScalarType{
		ScalarFunc("Any", func(any) error { return nil }),
		ScalarFunc("String", func(v any) error {
			switch v.(type) {
			case string, *string:
				return nil
			}
			return errNotA("String")
		}),
		ScalarFunc("Boolean", func(v any) error {
			switch v.(type) {
			case bool, *bool:
				return nil
			}
			return errNotA("Boolean")
		}),
		ScalarFunc("Integer", func(v any) error {
			f, ok := toFloat(v)
			if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
				return errNotA("Integer")
			}
			return nil
		}),
		ScalarFunc("Float", numberConforms("Float")),
		ScalarFunc("Number", numberConforms("Number")),
		ScalarFunc("Date", timeConforms("Date", time.DateOnly)),
		ScalarFunc("DateTime", timeConforms("DateTime", time.RFC3339)),
	}
}

func errNotA(name string) error { return fmt.Errorf("is not a valid %s", name) }

func numberConforms(name string) func(any) error {
	return func(v any) error {
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) {
			return errNotA(name)
		}
		return nil
	}
}

func timeConforms(name, layout string) func(any) error {
	return func(v any) error {
		switch t := v.(type) {
		case time.Time, *time.Time:
			return nil
		case string:
			if _, err := time.Parse(layout, t); err == nil {
				return nil
			}
		}
		return errNotA(name)
	}
}

// toFloat converts numeric values, including json.Number, to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ToFloat exposes numeric conversion to validator packages.
func ToFloat(v any) (float64, bool) { return toFloat(v) }
