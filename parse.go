package objectschema

import (
	"context"
	"errors"
	"io"

	"github.com/reoring/objectschema/internal/decode"
)

// Issue codes for JSON input failures.
const (
	CodeParseError   = decode.CodeParseError
	CodeDuplicateKey = decode.CodeDuplicateKey
	CodeTruncated    = decode.CodeTruncated
)

// DecodeOpt bounds JSON decoding. Zero values disable each limit.
type DecodeOpt struct {
	MaxDepth            int
	MaxBytes            int64
	RejectDuplicateKeys bool
}

// DecodeJSON reads one JSON value from r into the generic form the engine
// validates: objects become map[string]any, arrays []any, numbers
// json.Number. Decoding failures are returned as Issues.
func DecodeJSON(r io.Reader, opts ...DecodeOpt) (any, error) {
	v, err := decode.Reader(r, toDecodeOptions(opts))
	if err != nil {
		return nil, toIssues(err)
	}
	return v, nil
}

// DecodeJSONBytes is DecodeJSON over a byte slice.
func DecodeJSONBytes(b []byte, opts ...DecodeOpt) (any, error) {
	v, err := decode.Bytes(b, toDecodeOptions(opts))
	if err != nil {
		return nil, toIssues(err)
	}
	return v, nil
}

// ValidateJSON decodes r and validates the result against s.
func ValidateJSON(ctx context.Context, s *Schema, r io.Reader, dopt DecodeOpt, opts ...ValidateOpt) (Report, error) {
	data, err := DecodeJSON(r, dopt)
	if err != nil {
		return nil, err
	}
	return Validate(ctx, s, data, opts...)
}

func toDecodeOptions(opts []DecodeOpt) decode.Options {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return decode.Options{
		MaxDepth:            opt.MaxDepth,
		MaxBytes:            opt.MaxBytes,
		RejectDuplicateKeys: opt.RejectDuplicateKeys,
	}
}

func toIssues(err error) Issues {
	var de *decode.Error
	if errors.As(err, &de) {
		return AppendIssues(nil, Issue{Path: de.Path, Code: de.Code, Message: de.Message})
	}
	return AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: err.Error()})
}
