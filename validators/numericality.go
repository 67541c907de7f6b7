package validators

import (
	"math"
	"strconv"
	"strings"

	objectschema "github.com/reoring/objectschema"
	"github.com/reoring/objectschema/i18n"
	js "github.com/reoring/objectschema/jsonschema"
)

type numericalityOptions struct {
	OnlyInteger          bool     `mapstructure:"only_integer"`
	GreaterThan          *float64 `mapstructure:"greater_than"`
	GreaterThanOrEqualTo *float64 `mapstructure:"greater_than_or_equal_to"`
	LessThan             *float64 `mapstructure:"less_than"`
	LessThanOrEqualTo    *float64 `mapstructure:"less_than_or_equal_to"`
	EqualTo              *float64 `mapstructure:"equal_to"`
}

type bound struct {
	code  string
	limit *float64
	holds func(v, limit float64) bool
}

func (o numericalityOptions) bounds() []bound {
	return []bound{
		{i18n.CodeGreaterThan, o.GreaterThan, func(v, l float64) bool { return v > l }},
		{i18n.CodeGreaterEqual, o.GreaterThanOrEqualTo, func(v, l float64) bool { return v >= l }},
		{i18n.CodeLessThan, o.LessThan, func(v, l float64) bool { return v < l }},
		{i18n.CodeLessEqual, o.LessThanOrEqualTo, func(v, l float64) bool { return v <= l }},
		{i18n.CodeEqualTo, o.EqualTo, func(v, l float64) bool { return v == l }},
	}
}

// Numericality requires a number, or a string holding one, and checks the
// configured bounds.
//
//	numericality: {only_integer: true, greater_than_or_equal_to: 0}
type Numericality struct{}

func (Numericality) Check(fc objectschema.FieldContext, v any, opts objectschema.Options) ([]string, error) {
	if fc.Presence.Absent() {
		return nil, nil
	}
	var o numericalityOptions
	if err := decodeOptions(NameNumericality, opts, &o); err != nil {
		return nil, err
	}
	f, ok := number(v)
	if !ok {
		return []string{opts.Message(i18n.CodeNotANumber, nil)}, nil
	}
	if o.OnlyInteger && f != math.Trunc(f) {
		return []string{opts.Message(i18n.CodeNotAnInteger, nil)}, nil
	}
	var out []string
	for _, b := range o.bounds() {
		if b.limit != nil && !b.holds(f, *b.limit) {
			out = append(out, opts.Message(b.code, countf(*b.limit)))
		}
	}
	return out, nil
}

func (Numericality) CheckOptions(t objectschema.TypeRef, opts objectschema.Options) error {
	if t.IsDocument() {
		return incompatible(NameNumericality, t)
	}
	var o numericalityOptions
	return decodeOptions(NameNumericality, opts, &o)
}

func (Numericality) ContributeJSONSchema(_ objectschema.TypeRef, opts objectschema.Options, prop *js.Schema) {
	var o numericalityOptions
	if opts.Decode(&o) != nil {
		return
	}
	if o.OnlyInteger && (prop.Type == "number" || prop.Type == "") {
		prop.Type = "integer"
	}
	prop.ExclusiveMinimum = o.GreaterThan
	prop.Minimum = o.GreaterThanOrEqualTo
	prop.ExclusiveMaximum = o.LessThan
	prop.Maximum = o.LessThanOrEqualTo
	if o.EqualTo != nil {
		prop.Minimum, prop.Maximum = o.EqualTo, o.EqualTo
	}
}

func number(v any) (float64, bool) {
	if f, ok := objectschema.ToFloat(v); ok {
		return f, !math.IsNaN(f)
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
