package validators

import (
	"reflect"

	objectschema "github.com/reoring/objectschema"
	"github.com/reoring/objectschema/i18n"
	js "github.com/reoring/objectschema/jsonschema"
)

type setOptions struct {
	In []any `mapstructure:"in"`
}

// Inclusion requires the value to equal one of the "in" candidates.
//
//	inclusion: {in: [draft, published]}
type Inclusion struct{}

func (Inclusion) Check(fc objectschema.FieldContext, v any, opts objectschema.Options) ([]string, error) {
	if fc.Presence.Absent() {
		return nil, nil
	}
	var o setOptions
	if err := decodeOptions(NameInclusion, opts, &o); err != nil {
		return nil, err
	}
	if !contains(o.In, v) {
		return []string{opts.Message(i18n.CodeInclusion, nil)}, nil
	}
	return nil, nil
}

func (Inclusion) CheckOptions(t objectschema.TypeRef, opts objectschema.Options) error {
	return checkSet(NameInclusion, t, opts)
}

func (Inclusion) ContributeJSONSchema(_ objectschema.TypeRef, opts objectschema.Options, prop *js.Schema) {
	var o setOptions
	if opts.Decode(&o) == nil {
		prop.Enum = o.In
	}
}

// Exclusion rejects values equal to one of the "in" candidates.
//
//	exclusion: {in: [admin, root]}
type Exclusion struct{}

func (Exclusion) Check(fc objectschema.FieldContext, v any, opts objectschema.Options) ([]string, error) {
	if fc.Presence.Absent() {
		return nil, nil
	}
	var o setOptions
	if err := decodeOptions(NameExclusion, opts, &o); err != nil {
		return nil, err
	}
	if contains(o.In, v) {
		return []string{opts.Message(i18n.CodeExclusion, nil)}, nil
	}
	return nil, nil
}

func (Exclusion) CheckOptions(t objectschema.TypeRef, opts objectschema.Options) error {
	return checkSet(NameExclusion, t, opts)
}

func (Exclusion) ContributeJSONSchema(_ objectschema.TypeRef, opts objectschema.Options, prop *js.Schema) {
	var o setOptions
	if opts.Decode(&o) == nil {
		prop.Not = &js.Schema{Enum: o.In}
	}
}

func checkSet(name string, t objectschema.TypeRef, opts objectschema.Options) error {
	if t.IsDocument() {
		return incompatible(name, t)
	}
	var o setOptions
	if err := decodeOptions(name, opts, &o); err != nil {
		return err
	}
	if len(o.In) == 0 {
		return invalidOptions(name, "in must list at least one value")
	}
	return nil
}

func contains(set []any, v any) bool {
	for _, c := range set {
		if sameValue(c, v) {
			return true
		}
	}
	return false
}

// sameValue compares numbers by value across Go and JSON representations,
// strings by content, and everything else structurally.
func sameValue(a, b any) bool {
	if fa, ok := objectschema.ToFloat(a); ok {
		fb, ok := objectschema.ToFloat(b)
		return ok && fa == fb
	}
	if sa, ok := a.(string); ok {
		if p, isPtr := b.(*string); isPtr && p != nil {
			return sa == *p
		}
		sb, ok := b.(string)
		return ok && sa == sb
	}
	return reflect.DeepEqual(a, b)
}
