package validators

import (
	objectschema "github.com/reoring/objectschema"
	"github.com/reoring/objectschema/i18n"
	js "github.com/reoring/objectschema/jsonschema"
)

type lengthOptions struct {
	Minimum *int `mapstructure:"minimum"`
	Maximum *int `mapstructure:"maximum"`
	Is      *int `mapstructure:"is"`
}

// Length bounds the rune count of strings and the element count of lists.
//
//	length: {minimum: 1, maximum: 80}
//	length: {is: 3}
type Length struct{}

func (Length) Check(fc objectschema.FieldContext, v any, opts objectschema.Options) ([]string, error) {
	if fc.Presence.Absent() {
		return nil, nil
	}
	var o lengthOptions
	if err := decodeOptions(NameLength, opts, &o); err != nil {
		return nil, err
	}
	n, ok := size(v)
	if !ok {
		return nil, nil
	}
	var out []string
	if o.Is != nil && n != *o.Is {
		out = append(out, opts.Message(i18n.CodeWrongLength, count(*o.Is)))
	}
	if o.Minimum != nil && n < *o.Minimum {
		out = append(out, opts.Message(i18n.CodeTooShort, count(*o.Minimum)))
	}
	if o.Maximum != nil && n > *o.Maximum {
		out = append(out, opts.Message(i18n.CodeTooLong, count(*o.Maximum)))
	}
	return out, nil
}

func (Length) CheckOptions(t objectschema.TypeRef, opts objectschema.Options) error {
	if t.Kind() == objectschema.KindOne {
		return incompatible(NameLength, t)
	}
	var o lengthOptions
	if err := decodeOptions(NameLength, opts, &o); err != nil {
		return err
	}
	if o.Minimum == nil && o.Maximum == nil && o.Is == nil {
		return invalidOptions(NameLength, "one of minimum, maximum or is is required")
	}
	for _, b := range []*int{o.Minimum, o.Maximum, o.Is} {
		if b != nil && *b < 0 {
			return invalidOptions(NameLength, "bounds must not be negative")
		}
	}
	if o.Minimum != nil && o.Maximum != nil && *o.Minimum > *o.Maximum {
		return invalidOptions(NameLength, "minimum %d exceeds maximum %d", *o.Minimum, *o.Maximum)
	}
	return nil
}

func (Length) ContributeJSONSchema(t objectschema.TypeRef, opts objectschema.Options, prop *js.Schema) {
	var o lengthOptions
	if opts.Decode(&o) != nil {
		return
	}
	lo, hi := o.Minimum, o.Maximum
	if o.Is != nil {
		lo, hi = o.Is, o.Is
	}
	if t.Kind() == objectschema.KindMany {
		prop.MinItems, prop.MaxItems = lo, hi
		return
	}
	prop.MinLength, prop.MaxLength = lo, hi
}
