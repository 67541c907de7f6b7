package objectschema

import (
	"context"
	"fmt"
)

// serviceKey is a unique key per type parameter T for context storage.
type serviceKey[T any] struct{}

// WithService stores a typed service in ctx. Validators that talk to external
// systems (a uniqueness store, a remote directory) fetch it from fc.Ctx.
func WithService[T any](ctx context.Context, svc T) context.Context {
	return context.WithValue(ctx, serviceKey[T]{}, svc)
}

// ServiceFrom retrieves a typed service from ctx.
func ServiceFrom[T any](ctx context.Context) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(serviceKey[T]{}).(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// RequireService is ServiceFrom that reports a missing service as a
// configuration defect.
func RequireService[T any](fc FieldContext) (T, error) {
	if v, ok := ServiceFrom[T](fc.Ctx); ok {
		return v, nil
	}
	var zero T
	return zero, &ValidatorError{
		Schema: fc.Schema.Name(),
		Field:  fc.Path.Pointer(),
		Reason: fmt.Sprintf("%T not found in context", zero),
		Err:    ErrServiceMissing,
	}
}
