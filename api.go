package objectschema

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ValidateOpt tunes a validation pass. When several are passed, the last one
// wins.
type ValidateOpt struct {
	// Concurrency caps the goroutines of each fan-out (sibling fields,
	// collection elements, validators of one field). 0 means unlimited and
	// 1 validates sequentially.
	Concurrency int
	// MaxDepth aborts with ErrMaxDepth when nesting goes deeper. 0 disables
	// the guard.
	MaxDepth int
	// StrictTypes adds scalar conformance messages ("is not a valid Integer")
	// ahead of validator messages, and rejects non-object and non-list values
	// for document fields.
	StrictTypes bool
	// Logger receives debug and warning entries. Nil means no logging.
	Logger *zap.Logger
	// Observer is notified per document and per validator call.
	Observer Observer
}

// Observer receives timing and outcome notifications.
type Observer interface {
	// ObserveDocument is called once per top-level validation.
	ObserveDocument(schema string, valid bool, elapsed time.Duration)
	// ObserveValidator is called after every validator call.
	ObserveValidator(validator string, failed bool, elapsed time.Duration, err error)
}

func lastOpt(opts []ValidateOpt) ValidateOpt {
	if len(opts) == 0 {
		return ValidateOpt{}
	}
	return opts[len(opts)-1]
}

// Validate pairs s with data and returns the report. It fails only for
// configuration or validator defects; invalid data is described by the
// report.
func Validate(ctx context.Context, s *Schema, data any, opts ...ValidateOpt) (Report, error) {
	return NewDocument(s, data, opts...).Validate(ctx)
}

// IsValid reports whether data satisfies s.
func IsValid(ctx context.Context, s *Schema, data any, opts ...ValidateOpt) (bool, error) {
	return NewDocument(s, data, opts...).IsValid(ctx)
}

// Check returns a *ValidationError when data does not satisfy s.
func Check(ctx context.Context, s *Schema, data any, opts ...ValidateOpt) error {
	return NewDocument(s, data, opts...).Check(ctx)
}
