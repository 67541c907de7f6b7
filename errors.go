package objectschema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes attached to flattened report entries and configuration errors.
const (
	CodeInvalid           = "invalid"
	CodeUnknownValidator  = "unknown_validator"
	CodeMalformedType     = "malformed_type"
	CodeIncompatibleType  = "incompatible_type"
	CodeInvalidOptions    = "invalid_options"
	CodeDuplicateField    = "duplicate_field"
	CodeMaxDepth          = "max_depth"
	CodeServiceMissing    = "service_missing"
	CodeDependencyFailure = "dependency_failure"
	CodeNilSchema         = "nil_schema"
)

// Sentinels wrapped by ValidatorError. Match them with errors.Is.
var (
	ErrUnknownValidator = errors.New("unknown validator")
	ErrMalformedType    = errors.New("malformed type reference")
	ErrIncompatibleType = errors.New("validator incompatible with field type")
	ErrInvalidOptions   = errors.New("invalid validator options")
	ErrDuplicateField   = errors.New("duplicate field")
	ErrMaxDepth         = errors.New("max nesting depth exceeded")
	ErrServiceMissing   = errors.New("service not provided")
	ErrDependency       = errors.New("validator dependency failed")
	ErrNilSchema        = errors.New("nil schema")
)

// ValidatorError reports a configuration defect: an unknown validator, a
// malformed type reference, or a validator used on a type it cannot handle.
// It is returned as an error and never appears inside a Report.
type ValidatorError struct {
	Schema    string // Schema name, when known.
	Field     string // Field (or JSON Pointer at validation time) where the defect sits.
	Validator string // Validator name, when the defect concerns one.
	Reason    string
	Err       error
}

func (e *ValidatorError) Error() string {
	b := &strings.Builder{}
	b.WriteString("objectschema: ")
	if e.Schema != "" {
		fmt.Fprintf(b, "schema %q: ", e.Schema)
	}
	if e.Field != "" {
		fmt.Fprintf(b, "field %q: ", e.Field)
	}
	if e.Validator != "" {
		fmt.Fprintf(b, "validator %q: ", e.Validator)
	}
	switch {
	case e.Reason != "" && e.Err != nil:
		fmt.Fprintf(b, "%s: %v", e.Reason, e.Err)
	case e.Reason != "":
		b.WriteString(e.Reason)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString("invalid configuration")
	}
	return b.String()
}

func (e *ValidatorError) Unwrap() error { return e.Err }

// Code maps the wrapped sentinel onto an issue code.
func (e *ValidatorError) Code() string {
	switch {
	case errors.Is(e.Err, ErrUnknownValidator):
		return CodeUnknownValidator
	case errors.Is(e.Err, ErrMalformedType):
		return CodeMalformedType
	case errors.Is(e.Err, ErrIncompatibleType):
		return CodeIncompatibleType
	case errors.Is(e.Err, ErrInvalidOptions):
		return CodeInvalidOptions
	case errors.Is(e.Err, ErrDuplicateField):
		return CodeDuplicateField
	case errors.Is(e.Err, ErrMaxDepth):
		return CodeMaxDepth
	case errors.Is(e.Err, ErrServiceMissing):
		return CodeServiceMissing
	case errors.Is(e.Err, ErrDependency):
		return CodeDependencyFailure
	case errors.Is(e.Err, ErrNilSchema):
		return CodeNilSchema
	default:
		return CodeInvalid
	}
}

// AsValidatorError extracts a *ValidatorError from err using errors.As.
func AsValidatorError(err error) (*ValidatorError, bool) {
	var ve *ValidatorError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ValidationError carries a failed Report for callers that prefer a single
// error over inspecting the report. Validate and IsValid never produce it;
// construct it with NewValidationError or use Check.
type ValidationError struct {
	Report Report
}

// NewValidationError wraps a report. It returns nil when the report is valid.
func NewValidationError(r Report) *ValidationError {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Report: r}
}

// Issues flattens the wrapped report.
func (e *ValidationError) Issues() Issues { return e.Report.Issues() }

func (e *ValidationError) Error() string {
	iss := e.Report.Issues()
	if len(iss) == 0 {
		return "objectschema: validation failed"
	}
	return "objectschema: validation failed: " + iss.Error()
}

// AsValidationError extracts a *ValidationError from err using errors.As.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Issue is one failure message located by JSON Pointer.
type Issue struct {
	Path    string // JSON Pointer (for example: /oldBooks/1/title).
	Field   string // Name of the field that produced the message.
	Code    string
	Message string
}

// Issues is a flattened view of a Report that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s %s", it.Path, it.Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Paths returns the distinct pointers in order of first appearance.
func (iss Issues) Paths() []string {
	seen := make(map[string]struct{}, len(iss))
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		if _, ok := seen[it.Path]; ok {
			continue
		}
		seen[it.Path] = struct{}{}
		out = append(out, it.Path)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

func configError(schema, field, validator, reason string, err error) *ValidatorError {
	return &ValidatorError{Schema: schema, Field: field, Validator: validator, Reason: reason, Err: err}
}
