package objectschema

import (
	"reflect"
	"strings"
)

// lookupField reads name from a record. Absent keys and unreadable data
// report found=false.
func lookupField(data any, name string) (any, bool) {
	switch t := data.(type) {
	case nil:
		return nil, false
	case map[string]any:
		v, ok := t[name]
		return v, ok
	case map[string]string:
		v, ok := t[name]
		return v, ok
	}
	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		return structField(rv, name)
	}
	return nil, false
}

// structField finds name among the exported fields of rv. Untagged embedded
// structs are flattened as encoding/json does; fields of the outer struct
// shadow promoted ones. Fields keyed "-" are hidden.
func structField(rv reflect.Value, name string) (any, bool) {
	rt := rv.Type()
	var embedded []reflect.Value
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Anonymous && !taggedKey(sf) {
			fv := rv.Field(i)
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				embedded = append(embedded, fv)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if key := ResolveStructKey(sf); key != "-" && key == name {
			return rv.Field(i).Interface(), true
		}
	}
	for _, ev := range embedded {
		if v, ok := structField(ev, name); ok {
			return v, true
		}
	}
	return nil, false
}

// taggedKey reports whether a tag names the field (or hides it), which keeps
// an embedded struct from being flattened.
func taggedKey(sf reflect.StructField) bool {
	for _, p := range strings.Split(sf.Tag.Get("objectschema"), ",") {
		p = strings.TrimSpace(p)
		if p == "-" || strings.HasPrefix(p, "name=") {
			return true
		}
	}
	jt, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	return jt != ""
}

// Lookup reads the field name from a record the way the engine does: maps
// with string keys, structs (see ResolveStructKey) and pointers to either.
func Lookup(data any, name string) (any, bool) { return lookupField(data, name) }

// Elements returns the elements of a slice or array value. Byte slices are
// not sequences.
func Elements(v any) ([]any, bool) { return sequence(v) }

// isRecord reports whether v can be validated as a sub-document.
func isRecord(v any) bool {
	if IsNil(v) {
		return false
	}
	switch v.(type) {
	case map[string]any:
		return true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	case reflect.Struct:
		return true
	}
	return false
}

// sequence exposes the elements of a slice or array value.
func sequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		// []byte is a scalar payload, not a collection.
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// ResolveStructKey resolves the record key of a struct field.
// Priority: objectschema:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("objectschema"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if p == "-" {
				return "-"
			}
			if name, ok := strings.CutPrefix(p, "name="); ok {
				return name
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i]
			}
			return sf.Name
		}
		return jt
	}
	return sf.Name
}
