package decode

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestBytes_BuildsGenericTree(t *testing.T) {
	v, err := Bytes([]byte(`{"name":"John","books":[null,{"title":"","year":1999}],"ok":true}`), Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"name":  "John",
		"books": []any{nil, map[string]any{"title": "", "year": json.Number("1999")}},
		"ok":    true,
	}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %#v\nwant %#v", v, want)
	}
}

func TestBytes_EmptyArrayStaysNonNil(t *testing.T) {
	v, err := Bytes([]byte(`{"books":[]}`), Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	books := v.(map[string]any)["books"].([]any)
	if books == nil || len(books) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", books)
	}
}

func TestBytes_DuplicateKeys(t *testing.T) {
	in := []byte(`{"a":{"b":1,"b":2}}`)
	if _, err := Bytes(in, Options{}); err != nil {
		t.Fatalf("duplicates are accepted by default: %v", err)
	}
	_, err := Bytes(in, Options{RejectDuplicateKeys: true})
	var de *Error
	if !errors.As(err, &de) || de.Code != CodeDuplicateKey || de.Path != "/a/b" {
		t.Fatalf("expected duplicate_key at /a/b, got %v", err)
	}
}

func TestBytes_MaxDepth(t *testing.T) {
	_, err := Bytes([]byte(`{"a":{"b":{"c":1}}}`), Options{MaxDepth: 2})
	var de *Error
	if !errors.As(err, &de) || de.Code != CodeMaxDepth || de.Path != "/a/b" {
		t.Fatalf("expected max_depth at /a/b, got %v", err)
	}
}

func TestReader_MaxBytesAndTrailingData(t *testing.T) {
	_, err := Reader(strings.NewReader(`{"a":"0123456789"}`), Options{MaxBytes: 5})
	var de *Error
	if !errors.As(err, &de) || de.Code != CodeTruncated {
		t.Fatalf("expected truncated, got %v", err)
	}

	_, err = Reader(strings.NewReader(`{} {}`), Options{})
	if !errors.As(err, &de) || de.Code != CodeParseError {
		t.Fatalf("expected parse_error for trailing data, got %v", err)
	}
}
