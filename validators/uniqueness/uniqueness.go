// Package uniqueness provides the "uniqueness" validator, which asks a Store
// whether a field value is already taken. Store calls block on I/O, so the
// validator honors the context handed to Validate.
//
// The store is bound at construction with New, or looked up per call from
// the context with objectschema.WithService[uniqueness.Store].
package uniqueness

import (
	"fmt"
	"strings"

	objectschema "github.com/reoring/objectschema"
	"github.com/reoring/objectschema/i18n"
)

// Name is the registry name used by Register.
const Name = "uniqueness"

type options struct {
	Scope         string `mapstructure:"scope"`
	CaseSensitive *bool  `mapstructure:"case_sensitive"`
}

// Validator checks field values against a Store.
//
//	uniqueness: {scope: users/email, case_sensitive: false}
//
// Without a scope the value is checked under "<schema>/<field>".
type Validator struct {
	store Store
}

// New returns a Validator bound to store. A nil store means the store is
// taken from the validation context.
func New(store Store) *Validator { return &Validator{store: store} }

// Register adds a Validator bound to store to reg.
func Register(reg *objectschema.Registry, store Store) error {
	return reg.Register(Name, New(store))
}

func (v *Validator) Check(fc objectschema.FieldContext, val any, opts objectschema.Options) ([]string, error) {
	if fc.Presence.Absent() || objectschema.IsBlank(val) {
		return nil, nil
	}
	var o options
	if err := opts.Decode(&o); err != nil {
		return nil, err
	}
	store := v.store
	if store == nil {
		s, err := objectschema.RequireService[Store](fc)
		if err != nil {
			return nil, err
		}
		store = s
	}
	value := Key(val, o.CaseSensitive == nil || *o.CaseSensitive)
	taken, err := store.Taken(fc.Ctx, scopeOf(fc, o), value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", objectschema.ErrDependency, err)
	}
	if taken {
		return []string{opts.Message(i18n.CodeTaken, nil)}, nil
	}
	return nil, nil
}

func (v *Validator) CheckOptions(t objectschema.TypeRef, opts objectschema.Options) error {
	if t.IsDocument() {
		return fmt.Errorf("%w: %s cannot check %s", objectschema.ErrIncompatibleType, Name, t)
	}
	var o options
	if err := opts.Decode(&o); err != nil {
		return fmt.Errorf("%w: %s: %v", objectschema.ErrInvalidOptions, Name, err)
	}
	return nil
}

// Key normalizes a field value into the string stored in a scope.
func Key(val any, caseSensitive bool) string {
	s := fmt.Sprint(val)
	if p, ok := val.(*string); ok && p != nil {
		s = *p
	}
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

func scopeOf(fc objectschema.FieldContext, o options) string {
	if o.Scope != "" {
		return o.Scope
	}
	if name := fc.Schema.Name(); name != "" {
		return name + "/" + fc.Field.Name()
	}
	return fc.Field.Name()
}
