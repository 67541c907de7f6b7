package objectschema_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	objectschema "github.com/reoring/objectschema"
)

func TestValidateJSON_StrictTypesOverDecodedNumbers(t *testing.T) {
	s := objectschema.MustSchema(objectschema.SchemaConfig{
		Fields: []objectschema.FieldConfig{
			{Name: "title", Type: "String", Validate: required()},
			{Name: "year", Type: "Integer"},
			{Name: "price", Type: "Number"},
		},
	})
	in := `{"title":"Go","year":2009,"price":12.5}`
	rep, err := objectschema.ValidateJSON(context.Background(), s, strings.NewReader(in),
		objectschema.DecodeOpt{}, objectschema.ValidateOpt{StrictTypes: true})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !rep.Valid() {
		t.Fatalf("decoded document should be valid: %+v", rep)
	}

	rep, err = objectschema.ValidateJSON(context.Background(), s, strings.NewReader(`{"title":"Go","year":20.5}`),
		objectschema.DecodeOpt{}, objectschema.ValidateOpt{StrictTypes: true})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := rep["year"].Messages; len(got) != 1 || got[0] != "is not a valid Integer" {
		t.Fatalf("year messages = %v", got)
	}
}

func TestDecodeJSON_Failures(t *testing.T) {
	cases := []struct {
		name string
		in   string
		opt  objectschema.DecodeOpt
		code string
		path string
	}{
		{"syntax", `{"a":`, objectschema.DecodeOpt{}, objectschema.CodeParseError, ""},
		{"duplicate", `{"a":{"b":1,"b":2}}`, objectschema.DecodeOpt{RejectDuplicateKeys: true}, objectschema.CodeDuplicateKey, "/a/b"},
		{"too large", `{"a":"0123456789"}`, objectschema.DecodeOpt{MaxBytes: 8}, objectschema.CodeTruncated, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := objectschema.DecodeJSON(strings.NewReader(tc.in), tc.opt)
			iss, ok := err.(objectschema.Issues)
			if !ok || len(iss) != 1 {
				t.Fatalf("expected one issue, got %v", err)
			}
			if iss[0].Code != tc.code || (tc.path != "" && iss[0].Path != tc.path) {
				t.Fatalf("issue = %+v", iss[0])
			}
		})
	}
}

func TestDecodeJSONBytes_Shape(t *testing.T) {
	v, err := objectschema.DecodeJSONBytes([]byte(`{"books":[],"n":1}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := v.(map[string]any)
	if books, ok := m["books"].([]any); !ok || books == nil {
		t.Fatalf("empty array must decode to a non-nil []any, got %#v", m["books"])
	}
	if _, ok := m["n"].(json.Number); !ok {
		t.Fatalf("numbers must decode as json.Number, got %T", m["n"])
	}
}
