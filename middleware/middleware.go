// Package middleware validates JSON request bodies against a schema at the
// HTTP boundary. Handlers behind Validate read the decoded document with
// DocumentFromContext.
package middleware

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	objectschema "github.com/reoring/objectschema"
)

type ctxKeyDocument struct{}

// ContextWithDocument attaches decoded request data to ctx.
func ContextWithDocument(ctx context.Context, data any) context.Context {
	return context.WithValue(ctx, ctxKeyDocument{}, document{data})
}

// DocumentFromContext returns the data stored by ContextWithDocument.
func DocumentFromContext(ctx context.Context) (any, bool) {
	d, ok := ctx.Value(ctxKeyDocument{}).(document)
	return d.data, ok
}

// document boxes the value so a nil body is still distinguishable from a
// missing one.
type document struct{ data any }

// Options configures Validate.
type Options struct {
	Decode   objectschema.DecodeOpt
	Validate objectschema.ValidateOpt
	Logger   *zap.Logger
}

// DefaultOptions returns a recommended default for HTTP JSON boundaries:
// duplicate keys are errors and bodies are capped at 1 MiB.
func DefaultOptions() Options {
	return Options{Decode: objectschema.DecodeOpt{RejectDuplicateKeys: true, MaxBytes: 1 << 20}}
}

// Validate decodes the request body and validates it against s.
//
//   - undecodable bodies get 400 with {"issues": [...]}
//   - invalid documents get 422 with {"errors": report}
//   - validator failures get 500
//
// The last Options wins; none means DefaultOptions.
func Validate(s *objectschema.Schema, opts ...Options) func(http.Handler) http.Handler {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	vopt := opt.Validate
	if vopt.Logger == nil {
		vopt.Logger = log
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := objectschema.DecodeJSON(r.Body, opt.Decode)
			if err != nil {
				var iss objectschema.Issues
				errors.As(err, &iss)
				writeJSON(w, http.StatusBadRequest, ErrorPayload(iss))
				return
			}
			rep, err := objectschema.Validate(r.Context(), s, data, vopt)
			if err != nil {
				log.Error("request validation failed", zap.String("schema", s.Name()), zap.String("path", r.URL.Path), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": http.StatusText(http.StatusInternalServerError)})
				return
			}
			if !rep.Valid() {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": rep})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDocument(r.Context(), data)))
		})
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues objectschema.Issues) map[string]any {
	out := make([]map[string]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, map[string]string{"path": is.Path, "code": is.Code, "message": is.Message})
	}
	return map[string]any{"issues": out}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
