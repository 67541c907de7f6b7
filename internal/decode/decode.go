// Package decode turns JSON input into the generic values the validation
// engine reads (map[string]any, []any, string, json.Number, bool, nil) while
// enforcing duplicate-key, depth and size limits.
package decode

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

// Options controls runtime enforcement. Zero values disable each limit.
type Options struct {
	MaxDepth            int
	MaxBytes            int64
	RejectDuplicateKeys bool
}

// Issue codes produced by this package.
const (
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeMaxDepth     = "max_depth"
	CodeTruncated    = "truncated"
)

// Error locates a decoding failure by JSON Pointer.
type Error struct {
	Code    string
	Path    string
	Message string
}

func (e *Error) Error() string { return e.Code + " at " + e.Path + ": " + e.Message }

// Bytes decodes a single JSON value from b.
func Bytes(b []byte, opt Options) (any, error) {
	if opt.MaxBytes > 0 && int64(len(b)) > opt.MaxBytes {
		return nil, &Error{Code: CodeTruncated, Path: "/", Message: "max bytes exceeded"}
	}
	return decodeAll(bytes.NewReader(b), opt)
}

// Reader decodes a single JSON value from r.
func Reader(r io.Reader, opt Options) (any, error) {
	if opt.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return nil, &Error{Code: CodeParseError, Path: "/", Message: err.Error()}
		}
		return Bytes(data, opt)
	}
	return decodeAll(r, opt)
}

func decodeAll(r io.Reader, opt Options) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	d := &decoder{dec: dec, opt: opt}
	tok, err := d.next("")
	if err != nil {
		return nil, err
	}
	v, err := d.value(tok, "", 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &Error{Code: CodeParseError, Path: "/", Message: "unexpected data after top-level value"}
	}
	return v, nil
}

type decoder struct {
	dec *j.Decoder
	opt Options
}

func (d *decoder) next(path string) (j.Token, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &Error{Code: CodeParseError, Path: pointer(path), Message: err.Error()}
	}
	return tok, nil
}

func (d *decoder) value(tok j.Token, path string, depth int) (any, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return d.object(path, depth+1)
		case '[':
			return d.array(path, depth+1)
		}
		return nil, &Error{Code: CodeParseError, Path: pointer(path), Message: "unexpected delimiter " + v.String()}
	case string, bool, j.Number, nil:
		return v, nil
	case float64:
		return j.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
	return nil, &Error{Code: CodeParseError, Path: pointer(path), Message: "unexpected token"}
}

func (d *decoder) checkDepth(path string, depth int) error {
	if d.opt.MaxDepth > 0 && depth > d.opt.MaxDepth {
		return &Error{Code: CodeMaxDepth, Path: pointer(path), Message: "max depth exceeded"}
	}
	return nil
}

func (d *decoder) object(path string, depth int) (any, error) {
	if err := d.checkDepth(path, depth); err != nil {
		return nil, err
	}
	m := make(map[string]any)
	for {
		tok, err := d.next(path)
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(j.Delim); ok && delim == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &Error{Code: CodeParseError, Path: pointer(path), Message: "expected object key"}
		}
		child := join(path, key)
		if _, dup := m[key]; dup && d.opt.RejectDuplicateKeys {
			return nil, &Error{Code: CodeDuplicateKey, Path: pointer(child), Message: "key '" + key + "' duplicated"}
		}
		vt, err := d.next(child)
		if err != nil {
			return nil, err
		}
		v, err := d.value(vt, child, depth)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func (d *decoder) array(path string, depth int) (any, error) {
	if err := d.checkDepth(path, depth); err != nil {
		return nil, err
	}
	arr := []any{}
	for i := 0; ; i++ {
		tok, err := d.next(path)
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(j.Delim); ok && delim == ']' {
			return arr, nil
		}
		v, err := d.value(tok, join(path, strconv.Itoa(i)), depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func join(base, token string) string { return base + "/" + pointerEscaper.Replace(token) }

func pointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
