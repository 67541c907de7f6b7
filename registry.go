package objectschema

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/reoring/objectschema/i18n"
)

// FieldContext is handed to validators alongside the value under test.
type FieldContext struct {
	Ctx      context.Context
	Schema   *Schema // Schema declaring the field.
	Field    *Field
	Path     PathRef // Pointer of the field from the validated root.
	Presence Presence
	Record   any // Enclosing record, read-only.
}

// Validator inspects one field value and returns zero or more failure
// messages. Check may block on I/O; it should honor fc.Ctx. A non-nil error
// means the validator itself is broken and aborts the whole validation.
type Validator interface {
	Check(fc FieldContext, value any, opts Options) ([]string, error)
}

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc func(fc FieldContext, value any, opts Options) ([]string, error)

func (f ValidatorFunc) Check(fc FieldContext, value any, opts Options) ([]string, error) {
	return f(fc, value, opts)
}

// OptionsChecker is implemented by validators that can reject their
// configuration up front. It runs once per field at schema construction.
type OptionsChecker interface {
	CheckOptions(t TypeRef, opts Options) error
}

// Options carries a validator's static configuration.
type Options map[string]any

// Message returns the configured "message" option, or the catalog message
// for code when none is set.
func (o Options) Message(code string, data map[string]string) string {
	if s, ok := o["message"].(string); ok && s != "" {
		return s
	}
	return i18n.T(code, data)
}

// Decode copies the options into a typed struct (mapstructure tags, weakly
// typed so that YAML and JSON numbers decode into Go numeric fields).
func (o Options) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(o))
}

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	if o == nil {
		return Options{}
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Registry maps validator names to implementations. It is safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]Validator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]Validator)}
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.MustRegister("presence", presenceValidator{})
	return r
}()

// DefaultRegistry returns the process-wide registry. It ships with
// "presence"; sub-packages such as validators install more.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds a validator under name. Registering a name twice fails.
func (r *Registry) Register(name string, v Validator) error {
	if name == "" {
		return fmt.Errorf("objectschema: cannot register validator with empty name")
	}
	if v == nil {
		return fmt.Errorf("objectschema: cannot register nil validator %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.validators[name]; exists {
		return fmt.Errorf("objectschema: validator %q already registered", name)
	}
	r.validators[name] = v
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, v Validator) {
	if err := r.Register(name, v); err != nil {
		panic(err)
	}
}

// Replace registers v under name, overwriting any previous entry.
func (r *Registry) Replace(name string, v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = v
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.validators[name]
	return v, ok
}

// Names lists registered validators in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.validators))
	for n := range r.validators {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy, handy for per-test or per-tenant
// registries derived from the default one.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &Registry{validators: make(map[string]Validator, len(r.validators))}
	for k, v := range r.validators {
		out.validators[k] = v
	}
	return out
}

// presenceValidator fails on missing keys, nil values and blank strings.
// An empty collection is present.
type presenceValidator struct{}

func (presenceValidator) Check(fc FieldContext, v any, opts Options) ([]string, error) {
	if fc.Presence.Absent() || IsBlank(v) {
		return []string{opts.Message(i18n.CodePresence, nil)}, nil
	}
	return nil, nil
}
