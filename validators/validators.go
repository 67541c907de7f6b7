// Package validators provides the stock field validators beyond "presence".
//
// Install registers them under their conventional names: absence, length,
// format, inclusion, exclusion, numericality and distinct. Every validator
// except absence passes when the field is absent (missing or null); combine
// it with presence to require a value.
//
// Options are decoded with mapstructure, weakly typed, so values read from
// YAML or JSON schema files (strings, json.Number, float64) work as well as
// Go literals. Each validator rejects bad options at schema construction.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"unicode/utf8"

	objectschema "github.com/reoring/objectschema"
)

// Names of the validators registered by Install.
const (
	NameAbsence      = "absence"
	NameLength       = "length"
	NameFormat       = "format"
	NameInclusion    = "inclusion"
	NameExclusion    = "exclusion"
	NameNumericality = "numericality"
	NameDistinct     = "distinct"
)

type entry struct {
	name string
	v    objectschema.Validator
}

func stock() []entry {
	return []entry{
		{NameAbsence, Absence{}},
		{NameLength, Length{}},
		{NameFormat, NewFormat()},
		{NameInclusion, Inclusion{}},
		{NameExclusion, Exclusion{}},
		{NameNumericality, Numericality{}},
		{NameDistinct, Distinct{}},
	}
}

// Install registers the stock validators in reg. Names already taken are
// reported together; the remaining validators are still registered.
func Install(reg *objectschema.Registry) error {
	var errs []error
	for _, e := range stock() {
		if err := reg.Register(e.name, e.v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRegistry returns a clone of the default registry with the stock
// validators installed.
func NewRegistry() *objectschema.Registry {
	reg := objectschema.DefaultRegistry().Clone()
	for _, e := range stock() {
		reg.Replace(e.name, e.v)
	}
	return reg
}

func invalidOptions(name string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", objectschema.ErrInvalidOptions, name, fmt.Sprintf(format, args...))
}

func incompatible(name string, t objectschema.TypeRef) error {
	return fmt.Errorf("%w: %s cannot check %s", objectschema.ErrIncompatibleType, name, t)
}

func decodeOptions(name string, opts objectschema.Options, out any) error {
	if err := opts.Decode(out); err != nil {
		return invalidOptions(name, "%v", err)
	}
	return nil
}

// size measures strings in runes and collections in elements.
func size(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case *string:
		if t == nil {
			return 0, false
		}
		return utf8.RuneCountInString(*t), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

func count(n int) map[string]string { return map[string]string{"count": strconv.Itoa(n)} }

func countf(f float64) map[string]string {
	return map[string]string{"count": strconv.FormatFloat(f, 'f', -1, 64)}
}
