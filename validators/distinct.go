package validators

import (
	"fmt"

	objectschema "github.com/reoring/objectschema"
	"github.com/reoring/objectschema/i18n"
	js "github.com/reoring/objectschema/jsonschema"
)

type distinctOptions struct {
	By string `mapstructure:"by"`
}

// Distinct requires the elements of a list to be unique, either as whole
// values or by the field named in "by". Elements that are nil or lack the
// key are ignored.
//
//	distinct: {by: isbn}
type Distinct struct{}

func (Distinct) Check(fc objectschema.FieldContext, v any, opts objectschema.Options) ([]string, error) {
	if fc.Presence.Absent() {
		return nil, nil
	}
	var o distinctOptions
	if err := decodeOptions(NameDistinct, opts, &o); err != nil {
		return nil, err
	}
	elems, ok := objectschema.Elements(v)
	if !ok {
		return nil, nil
	}
	// Keys are compared by their printed form; keep key fields single-typed.
	seen := make(map[string]struct{}, len(elems))
	for _, e := range elems {
		if objectschema.IsNil(e) {
			continue
		}
		key := e
		if o.By != "" {
			kv, found := objectschema.Lookup(e, o.By)
			if !found || objectschema.IsNil(kv) {
				continue
			}
			key = kv
		}
		k := fmt.Sprint(key)
		if _, dup := seen[k]; dup {
			return []string{opts.Message(i18n.CodeDuplicate, nil)}, nil
		}
		seen[k] = struct{}{}
	}
	return nil, nil
}

func (Distinct) CheckOptions(t objectschema.TypeRef, opts objectschema.Options) error {
	if t.Kind() == objectschema.KindOne {
		return incompatible(NameDistinct, t)
	}
	var o distinctOptions
	return decodeOptions(NameDistinct, opts, &o)
}

func (Distinct) ContributeJSONSchema(_ objectschema.TypeRef, opts objectschema.Options, prop *js.Schema) {
	var o distinctOptions
	if opts.Decode(&o) == nil && o.By == "" {
		prop.UniqueItems = true
	}
}
