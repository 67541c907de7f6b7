package objectschema_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	objectschema "github.com/reoring/objectschema"
)

// delayed answers after d, so later-declared validators can finish first.
func delayed(d time.Duration, msg string) objectschema.Validator {
	return objectschema.ValidatorFunc(func(fc objectschema.FieldContext, _ any, _ objectschema.Options) ([]string, error) {
		select {
		case <-time.After(d):
		case <-fc.Ctx.Done():
			return nil, fc.Ctx.Err()
		}
		return []string{msg}, nil
	})
}

func TestValidate_MessagesKeepDeclarationOrder(t *testing.T) {
	reg := objectschema.NewRegistry()
	reg.MustRegister("slow", delayed(40*time.Millisecond, "first"))
	reg.MustRegister("mid", delayed(20*time.Millisecond, "second"))
	reg.MustRegister("fast", delayed(0, "third"))
	s := objectschema.MustSchema(objectschema.SchemaConfig{
		Registry: reg,
		Fields: []objectschema.FieldConfig{{Name: "x", Type: "Any", Validate: []objectschema.ValidatorConfig{
			{Name: "slow"}, {Name: "mid"}, {Name: "fast"},
		}}},
	})
	for _, c := range []int{0, 1, 2} {
		rep, err := objectschema.Validate(context.Background(), s, map[string]any{"x": 1}, objectschema.ValidateOpt{Concurrency: c})
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if got := strings.Join(rep["x"].Messages, ","); got != "first,second,third" {
			t.Fatalf("concurrency %d: messages = %s", c, got)
		}
	}
}

func TestValidate_ValidatorsRunConcurrently(t *testing.T) {
	const n = 4
	var wg sync.WaitGroup
	wg.Add(n)
	barrier := objectschema.ValidatorFunc(func(fc objectschema.FieldContext, _ any, _ objectschema.Options) ([]string, error) {
		wg.Done()
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("validators were serialized")
		}
	})
	reg := objectschema.NewRegistry()
	reg.MustRegister("barrier", barrier)
	var fields []objectschema.FieldConfig
	for i := 0; i < n; i++ {
		fields = append(fields, objectschema.FieldConfig{
			Name: fmt.Sprintf("f%d", i), Type: "Any",
			Validate: []objectschema.ValidatorConfig{{Name: "barrier"}},
		})
	}
	s := objectschema.MustSchema(objectschema.SchemaConfig{Registry: reg, Fields: fields})
	if _, err := objectschema.Validate(context.Background(), s, map[string]any{}); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate_ValidatorErrorAborts(t *testing.T) {
	boom := errors.New("store unreachable")
	reg := objectschema.NewRegistry()
	reg.MustRegister("broken", objectschema.ValidatorFunc(func(objectschema.FieldContext, any, objectschema.Options) ([]string, error) {
		return nil, boom
	}))
	book := objectschema.MustSchema(objectschema.SchemaConfig{
		Registry: reg,
		Fields:   []objectschema.FieldConfig{{Name: "title", Type: "String", Validate: []objectschema.ValidatorConfig{{Name: "broken"}}}},
	})
	s := objectschema.MustSchema(objectschema.SchemaConfig{
		Fields: []objectschema.FieldConfig{{Name: "books", Type: []*objectschema.Schema{book}}},
	})

	core, logs := observer.New(zapcore.WarnLevel)
	rep, err := objectschema.Validate(context.Background(), s,
		map[string]any{"books": []any{map[string]any{"title": "x"}}},
		objectschema.ValidateOpt{Logger: zap.New(core)})
	if rep != nil || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got rep=%v err=%v", rep, err)
	}
	if !strings.Contains(err.Error(), "/books/0/title") {
		t.Fatalf("error should locate the field: %v", err)
	}
	if logs.FilterMessage("validator failed").Len() != 1 || logs.FilterMessage("validation aborted").Len() != 1 {
		t.Fatalf("unexpected log entries: %v", logs.All())
	}
}

func TestValidate_ValidatorPanicPropagates(t *testing.T) {
	reg := objectschema.NewRegistry()
	reg.MustRegister("panics", objectschema.ValidatorFunc(func(objectschema.FieldContext, any, objectschema.Options) ([]string, error) {
		panic("kaboom")
	}))
	reg.MustRegister("ok", objectschema.ValidatorFunc(func(objectschema.FieldContext, any, objectschema.Options) ([]string, error) {
		return nil, nil
	}))
	s := objectschema.MustSchema(objectschema.SchemaConfig{
		Registry: reg,
		Fields: []objectschema.FieldConfig{
			{Name: "a", Type: "Any", Validate: []objectschema.ValidatorConfig{{Name: "ok"}, {Name: "panics"}}},
			{Name: "b", Type: "Any", Validate: []objectschema.ValidatorConfig{{Name: "ok"}}},
		},
	})
	defer func() {
		if r := recover(); r != "kaboom" {
			t.Fatalf("expected the validator panic to surface, got %v", r)
		}
	}()
	_, _ = objectschema.Validate(context.Background(), s, map[string]any{})
	t.Fatalf("unreachable")
}

func TestValidate_StrictTypes(t *testing.T) {
	book := objectschema.MustSchema(objectschema.SchemaConfig{
		Fields: []objectschema.FieldConfig{{Name: "title", Type: "String", Validate: required()}},
	})
	s := objectschema.MustSchema(objectschema.SchemaConfig{
		Fields: []objectschema.FieldConfig{
			{Name: "year", Type: "Integer", Validate: required()},
			{Name: "price", Type: "Float"},
			{Name: "published", Type: "Date"},
			{Name: "book", Type: book},
			{Name: "books", Type: []*objectschema.Schema{book}},
		},
	})
	data := map[string]any{
		"year":      "1999",
		"price":     "cheap",
		"published": "2024-02-30",
		"book":      "not an object",
		"books":     map[string]any{"title": "x"},
	}
	ctx := context.Background()

	rep, err := objectschema.Validate(ctx, s, data, objectschema.ValidateOpt{StrictTypes: true})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := map[string]string{
		"year":      "is not a valid Integer",
		"price":     "is not a valid Float",
		"published": "is not a valid Date",
		"book":      "is invalid",
		"books":     "must be a list",
	}
	for name, msg := range want {
		got := rep[name].Messages
		if len(got) == 0 || got[0] != msg {
			t.Fatalf("%s: messages = %v, want %q first", name, got, msg)
		}
	}
	if rep["book"].Related != nil || rep["books"].Items != nil {
		t.Fatalf("strict mode must not descend into mismatched values")
	}

	lax, err := objectschema.Validate(ctx, s, data)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !lax["year"].Valid() || !lax["price"].Valid() {
		t.Fatalf("type conformance is only checked in strict mode: %+v", lax)
	}
	// A scalar where a document is expected is traversed as an empty record.
	if lax["book"].Related == nil || lax["book"].Related["title"].Messages[0] != "is required" {
		t.Fatalf("lax mode should descend into the value: %+v", lax["book"])
	}

	ok, err := objectschema.IsValid(ctx, s, map[string]any{
		"year":      float64(2001),
		"price":     9.5,
		"published": "2024-02-29",
	}, objectschema.ValidateOpt{StrictTypes: true})
	if err != nil || !ok {
		t.Fatalf("conforming values rejected: ok=%v err=%v", ok, err)
	}
}

func TestValidate_MaxDepth(t *testing.T) {
	leaf := objectschema.MustSchema(objectschema.SchemaConfig{
		Name:   "leaf",
		Fields: []objectschema.FieldConfig{{Name: "v", Type: "Any"}},
	})
	mid := objectschema.MustSchema(objectschema.SchemaConfig{
		Name:   "mid",
		Fields: []objectschema.FieldConfig{{Name: "leaf", Type: leaf}},
	})
	root := objectschema.MustSchema(objectschema.SchemaConfig{
		Name:   "root",
		Fields: []objectschema.FieldConfig{{Name: "mid", Type: mid}},
	})
	data := map[string]any{"mid": map[string]any{"leaf": map[string]any{"v": 1}}}
	ctx := context.Background()

	if _, err := objectschema.Validate(ctx, root, data, objectschema.ValidateOpt{MaxDepth: 2}); err != nil {
		t.Fatalf("depth 2 should pass: %v", err)
	}
	_, err := objectschema.Validate(ctx, root, data, objectschema.ValidateOpt{MaxDepth: 1})
	ve, ok := objectschema.AsValidatorError(err)
	if !ok || !errors.Is(err, objectschema.ErrMaxDepth) || ve.Code() != objectschema.CodeMaxDepth {
		t.Fatalf("expected max depth error, got %v", err)
	}
	if ve.Field != "/mid/leaf" {
		t.Fatalf("depth error location = %q", ve.Field)
	}
}

type recordingObserver struct {
	mu         sync.Mutex
	documents  []string
	validators map[string]int
	failed     int
}

func (o *recordingObserver) ObserveDocument(schema string, valid bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.documents = append(o.documents, fmt.Sprintf("%s:%v", schema, valid))
}

func (o *recordingObserver) ObserveValidator(name string, failed bool, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.validators == nil {
		o.validators = map[string]int{}
	}
	o.validators[name]++
	if failed {
		o.failed++
	}
}

func TestValidate_ObserverAndDebugLog(t *testing.T) {
	book := bookSchema(t)
	user := userSchema(t, book)
	obs := &recordingObserver{}
	core, logs := observer.New(zapcore.DebugLevel)

	_, err := objectschema.Validate(context.Background(), user, map[string]any{
		"oldBooks": []any{nil, map[string]any{"title": ""}},
	}, objectschema.ValidateOpt{Observer: obs, Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(obs.documents) != 1 || obs.documents[0] != "user:false" {
		t.Fatalf("documents = %v", obs.documents)
	}
	// five top-level presence checks plus one for the title of oldBooks[1].
	if obs.validators["presence"] != 6 || obs.failed != 5 {
		t.Fatalf("validators = %v failed = %d", obs.validators, obs.failed)
	}
	entries := logs.FilterMessage("document validated").All()
	if len(entries) != 1 || entries[0].ContextMap()["messages"] != int64(5) {
		t.Fatalf("unexpected debug entries: %v", logs.All())
	}
}

type directory interface {
	Known(name string) bool
}

type staticDirectory map[string]bool

func (d staticDirectory) Known(name string) bool { return d[name] }

func TestValidate_ServiceInjection(t *testing.T) {
	reg := objectschema.DefaultRegistry().Clone()
	reg.MustRegister("known", objectschema.ValidatorFunc(func(fc objectschema.FieldContext, v any, opts objectschema.Options) ([]string, error) {
		dir, err := objectschema.RequireService[directory](fc)
		if err != nil {
			return nil, err
		}
		if s, _ := v.(string); !dir.Known(s) {
			return []string{opts.Message("invalid", nil)}, nil
		}
		return nil, nil
	}))
	s := objectschema.MustSchema(objectschema.SchemaConfig{
		Name:     "member",
		Registry: reg,
		Fields:   []objectschema.FieldConfig{{Name: "name", Type: "String", Validate: []objectschema.ValidatorConfig{{Name: "known"}}}},
	})

	_, err := objectschema.Validate(context.Background(), s, map[string]any{"name": "ann"})
	if !errors.Is(err, objectschema.ErrServiceMissing) {
		t.Fatalf("expected missing service, got %v", err)
	}

	ctx := objectschema.WithService[directory](context.Background(), staticDirectory{"ann": true})
	rep, err := objectschema.Validate(ctx, s, map[string]any{"name": "bob"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := rep["name"].Messages; len(got) != 1 || got[0] != "is invalid" {
		t.Fatalf("messages = %v", got)
	}
	ok, err := objectschema.IsValid(ctx, s, map[string]any{"name": "ann"})
	if err != nil || !ok {
		t.Fatalf("known name rejected: ok=%v err=%v", ok, err)
	}
}

func TestValidate_FieldContext(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]string{}
	)
	reg := objectschema.NewRegistry()
	reg.MustRegister("spy", objectschema.ValidatorFunc(func(fc objectschema.FieldContext, _ any, _ objectschema.Options) ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		seen[fc.Path.Pointer()] = fc.Presence.String()
		return nil, nil
	}))
	spy := []objectschema.ValidatorConfig{{Name: "spy"}}
	book := objectschema.MustSchema(objectschema.SchemaConfig{
		Registry: reg,
		Fields:   []objectschema.FieldConfig{{Name: "title", Type: "String", Validate: spy}},
	})
	s := objectschema.MustSchema(objectschema.SchemaConfig{
		Registry: reg,
		Fields: []objectschema.FieldConfig{
			{Name: "a", Type: "Any", Validate: spy},
			{Name: "b", Type: "Any", Validate: spy},
			{Name: "books", Type: []*objectschema.Schema{book}, Validate: spy},
		},
	})
	_, err := objectschema.Validate(context.Background(), s, map[string]any{
		"b":     nil,
		"books": []any{map[string]any{"title": "x"}},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := map[string]string{"/a": "missing", "/b": "null", "/books": "seen", "/books/0/title": "seen"}
	for p, pres := range want {
		if seen[p] != pres {
			t.Fatalf("%s: presence = %q want %q (all: %v)", p, seen[p], pres, seen)
		}
	}
}

func TestValidate_CancelledContext(t *testing.T) {
	reg := objectschema.NewRegistry()
	reg.MustRegister("slow", delayed(time.Second, "late"))
	s := objectschema.MustSchema(objectschema.SchemaConfig{
		Registry: reg,
		Fields:   []objectschema.FieldConfig{{Name: "x", Type: "Any", Validate: []objectschema.ValidatorConfig{{Name: "slow"}}}},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := objectschema.Validate(ctx, s, map[string]any{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
