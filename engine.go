package objectschema

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/objectschema/i18n"
)

// walker runs one validation pass. It holds no per-document state, so a
// single walker serves every nested level of the pass.
type walker struct {
	opt ValidateOpt
	log *zap.Logger
}

func newWalker(opt ValidateOpt) *walker {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &walker{opt: opt, log: log}
}

func (w *walker) run(ctx context.Context, s *Schema, data any) (Report, error) {
	start := time.Now()
	rep, err := w.document(ctx, s, data, RootPath(), 0)
	elapsed := time.Since(start)
	if err != nil {
		w.log.Warn("validation aborted", zap.String("schema", s.label()), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, err
	}
	valid := rep.Valid()
	if w.opt.Observer != nil {
		w.opt.Observer.ObserveDocument(s.label(), valid, elapsed)
	}
	if ce := w.log.Check(zap.DebugLevel, "document validated"); ce != nil {
		ce.Write(
			zap.String("schema", s.label()),
			zap.Bool("valid", valid),
			zap.Int("messages", rep.Count()),
			zap.Duration("elapsed", elapsed),
		)
	}
	return rep, nil
}

func (w *walker) document(ctx context.Context, s *Schema, data any, at PathRef, depth int) (Report, error) {
	if w.opt.MaxDepth > 0 && depth > w.opt.MaxDepth {
		reason := fmt.Sprintf("depth %d exceeds limit %d", depth, w.opt.MaxDepth)
		return nil, configError(s.name, at.Pointer(), "", reason, ErrMaxDepth)
	}
	results := make([]*FieldResult, len(s.fields))
	err := w.fanOut(len(s.fields), func(i int) error {
		fr, err := w.field(ctx, s, s.fields[i], data, at, depth)
		results[i] = fr
		return err
	})
	if err != nil {
		return nil, err
	}
	rep := make(Report, len(results))
	for i, f := range s.fields {
		rep[f.name] = results[i]
	}
	return rep, nil
}

func (w *walker) field(ctx context.Context, s *Schema, f *Field, data any, at PathRef, depth int) (*FieldResult, error) {
	v, found := lookupField(data, f.name)
	p := at.Field(f.name)
	fc := FieldContext{
		Ctx:      ctx,
		Schema:   s,
		Field:    f,
		Path:     p,
		Presence: presenceOf(v, found),
		Record:   data,
	}
	msgs, err := w.messages(fc, v)
	if err != nil {
		return nil, err
	}
	fr := &FieldResult{Messages: msgs}
	if fc.Presence.Absent() {
		return fr, nil
	}

	switch f.typ.kind {
	case KindOne:
		if w.opt.StrictTypes && !isRecord(v) {
			fr.Messages = prepend(fr.Messages, i18n.T(i18n.CodeInvalid, nil))
			return fr, nil
		}
		rel, err := w.document(ctx, f.typ.schema, v, p, depth+1)
		if err != nil {
			return nil, err
		}
		fr.Related = rel
	case KindMany:
		elems, ok := sequence(v)
		if !ok {
			if w.opt.StrictTypes {
				fr.Messages = prepend(fr.Messages, i18n.T(i18n.CodeNotAList, nil))
			}
			return fr, nil
		}
		items := make([]Report, len(elems))
		err := w.fanOut(len(elems), func(i int) error {
			if !isRecord(elems[i]) {
				return nil
			}
			rep, err := w.document(ctx, f.typ.schema, elems[i], p.Index(i), depth+1)
			items[i] = rep
			return err
		})
		if err != nil {
			return nil, err
		}
		fr.Items = items
	}
	return fr, nil
}

// messages runs the validator chain of one field. Validators may complete in
// any order; the result is concatenated in declaration order.
func (w *walker) messages(fc FieldContext, v any) ([]string, error) {
	f := fc.Field
	msgs := []string{}
	if w.opt.StrictTypes && f.scalar != nil && !fc.Presence.Absent() {
		if err := f.scalar.Conforms(v); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	per := make([][]string, len(f.validators))
	err := w.fanOut(len(f.validators), func(i int) error {
		out, err := w.check(fc, f.validators[i], v)
		per[i] = out
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, m := range per {
		msgs = append(msgs, m...)
	}
	return msgs, nil
}

func (w *walker) check(fc FieldContext, bv boundValidator, v any) ([]string, error) {
	start := time.Now()
	out, err := bv.impl.Check(fc, v, bv.opts)
	if w.opt.Observer != nil {
		w.opt.Observer.ObserveValidator(bv.name, len(out) > 0, time.Since(start), err)
	}
	if err != nil {
		w.log.Warn("validator failed",
			zap.String("validator", bv.name),
			zap.String("path", fc.Path.Pointer()),
			zap.Error(err),
		)
		if _, ok := AsValidatorError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("objectschema: validator %q at %s: %w", bv.name, fc.Path, err)
	}
	return out, nil
}

// fanOut calls fn for every index, concurrently when n > 1, and waits for
// all of them. The first error wins. A panic inside fn is re-raised on the
// calling goroutine once every call has returned.
func (w *walker) fanOut(n int, fn func(i int) error) error {
	switch n {
	case 0:
		return nil
	case 1:
		return fn(0)
	}
	var (
		g        errgroup.Group
		mu       sync.Mutex
		panicked bool
		pval     any
	)
	if w.opt.Concurrency > 0 {
		g.SetLimit(w.opt.Concurrency)
	}
	for i := 0; i < n; i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if !panicked {
						panicked, pval = true, r
					}
					mu.Unlock()
					err = errValidatorPanic
				}
			}()
			return fn(i)
		})
	}
	err := g.Wait()
	if panicked {
		panic(pval)
	}
	return err
}

var errValidatorPanic = fmt.Errorf("objectschema: validator panicked")

func prepend(msgs []string, m string) []string {
	return append([]string{m}, msgs...)
}
