package validators

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	objectschema "github.com/reoring/objectschema"
	"github.com/reoring/objectschema/i18n"
	js "github.com/reoring/objectschema/jsonschema"
)

type formatOptions struct {
	With string `mapstructure:"with"`
	As   string `mapstructure:"as"`
}

// namedFormat maps a format name onto a go-playground tag and, when one
// exists, the JSON Schema format keyword.
type namedFormat struct {
	tag        string
	jsonFormat string
}

var namedFormats = map[string]namedFormat{
	"email":    {tag: "email", jsonFormat: "email"},
	"url":      {tag: "url", jsonFormat: "uri"},
	"uri":      {tag: "uri", jsonFormat: "uri"},
	"uuid":     {tag: "uuid", jsonFormat: "uuid"},
	"ipv4":     {tag: "ipv4", jsonFormat: "ipv4"},
	"ipv6":     {tag: "ipv6", jsonFormat: "ipv6"},
	"hostname": {tag: "hostname_rfc1123", jsonFormat: "hostname"},
	"alpha":    {tag: "alpha"},
	"alphanum": {tag: "alphanum"},
	"numeric":  {tag: "numeric"},
	"e164":     {tag: "e164"},
	"hexcolor": {tag: "hexcolor"},
}

// Formats lists the names accepted by the "as" option.
func Formats() []string {
	out := make([]string, 0, len(namedFormats))
	for n := range namedFormats {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Format matches string values against a regular expression ("with") or a
// named format ("as", see Formats). Non-string values are invalid.
//
//	format: {as: email}
//	format: {with: "^[A-Z]{3}$"}
type Format struct {
	v        *validator.Validate
	patterns sync.Map // pattern -> *regexp.Regexp
}

// NewFormat returns a Format backed by its own go-playground validator.
func NewFormat() *Format {
	return &Format{v: validator.New()}
}

func (f *Format) Check(fc objectschema.FieldContext, v any, opts objectschema.Options) ([]string, error) {
	if fc.Presence.Absent() {
		return nil, nil
	}
	var o formatOptions
	if err := decodeOptions(NameFormat, opts, &o); err != nil {
		return nil, err
	}
	s, ok := v.(string)
	if !ok {
		if p, isPtr := v.(*string); isPtr {
			s, ok = *p, true
		}
	}
	if !ok {
		return []string{opts.Message(i18n.CodeInvalid, nil)}, nil
	}
	if o.With != "" {
		re, err := f.compile(o.With)
		if err != nil {
			return nil, invalidOptions(NameFormat, "%v", err)
		}
		if !re.MatchString(s) {
			return []string{opts.Message(i18n.CodeInvalid, nil)}, nil
		}
		return nil, nil
	}
	nf, known := namedFormats[strings.ToLower(o.As)]
	if !known {
		return nil, invalidOptions(NameFormat, "unknown format %q", o.As)
	}
	if err := f.v.Var(s, nf.tag); err != nil {
		if _, failed := err.(validator.ValidationErrors); failed {
			return []string{opts.Message(i18n.CodeInvalid, nil)}, nil
		}
		return nil, err
	}
	return nil, nil
}

func (f *Format) CheckOptions(t objectschema.TypeRef, opts objectschema.Options) error {
	if t.IsDocument() {
		return incompatible(NameFormat, t)
	}
	var o formatOptions
	if err := decodeOptions(NameFormat, opts, &o); err != nil {
		return err
	}
	switch {
	case o.With != "" && o.As != "":
		return invalidOptions(NameFormat, "with and as are exclusive")
	case o.With != "":
		if _, err := f.compile(o.With); err != nil {
			return invalidOptions(NameFormat, "%v", err)
		}
	case o.As != "":
		if _, ok := namedFormats[strings.ToLower(o.As)]; !ok {
			return invalidOptions(NameFormat, "unknown format %q (known: %s)", o.As, strings.Join(Formats(), ", "))
		}
	default:
		return invalidOptions(NameFormat, "with or as is required")
	}
	return nil
}

func (f *Format) ContributeJSONSchema(_ objectschema.TypeRef, opts objectschema.Options, prop *js.Schema) {
	var o formatOptions
	if opts.Decode(&o) != nil {
		return
	}
	if o.With != "" {
		prop.Pattern = o.With
		return
	}
	if nf := namedFormats[strings.ToLower(o.As)]; nf.jsonFormat != "" {
		prop.Format = nf.jsonFormat
	}
}

func (f *Format) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := f.patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	f.patterns.Store(pattern, re)
	return re, nil
}
