// The MIT License (MIT)
//
// Copyright (c) 2022 West Damron
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package einsum

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wdamron/hypertrie"
)

// Results is the lazily evaluated result of an einsum.
type Results[R Number] struct {
	eval func(yield func(hypertrie.Key, R) bool) error
	err  error
}

// Evaluate prepares the evaluation of sc over operands, which are matched to
// the plain operands of sc in order. Nothing is computed until the results
// are iterated. Evaluation stops with ErrTimeout once ctx is done.
func Evaluate[R Number, V hypertrie.Value](ctx context.Context, sc *Subscript, operands []hypertrie.View[V], opts ...Option) *Results[R] {
	res := &Results[R]{}
	if err := check(sc, operands); err != nil {
		res.err = err
		return res
	}
	cfg := newConfig(opts)
	res.eval = func(yield func(hypertrie.Key, R) bool) error {
		return evaluate(ctx, cfg, sc, operands, yield)
	}
	return res
}

// All ranges over the result entries. Under bag semantics a key is yielded
// once per binding of the labels joined before its last result label, so it
// may repeat; its values add up. Every call evaluates the einsum again; Err
// reports how the last evaluation ended.
func (res *Results[R]) All() iter.Seq2[hypertrie.Key, R] {
	return func(yield func(hypertrie.Key, R) bool) {
		if res.eval != nil {
			res.err = res.eval(yield)
		}
	}
}

// Err returns the error which ended the last evaluation, if any.
func (res *Results[R]) Err() error { return res.err }

// ToMap evaluates sc over operands and collects the result. Values of repeated
// keys are added up. When ctx is done before the evaluation completes, the
// entries collected so far are returned with an error wrapping ErrTimeout.
func ToMap[R Number, V hypertrie.Value](ctx context.Context, sc *Subscript, operands []hypertrie.View[V], opts ...Option) (*Map[R], error) {
	res := Evaluate[R](ctx, sc, operands, opts...)
	m := NewMap[R](len(sc.Result))
	for key, v := range res.All() {
		m.Add(key, v)
	}
	return m, res.Err()
}

func check[V hypertrie.Value](sc *Subscript, operands []hypertrie.View[V]) error {
	if len(operands) != sc.OperandCount() {
		return fmt.Errorf("%w: %s takes %d operands, got %d", ErrOperandCount, sc, sc.OperandCount(), len(operands))
	}
	var err error
	sc.visit(func(op *Operand) {
		if op.Nested() || err != nil {
			return
		}
		if d := operands[op.Input].Depth(); d != len(op.Labels) {
			err = fmt.Errorf("%w: operand %d has depth %d for labels %q", ErrOperandDepth, op.Input, d, string(labelRunes(op.Labels)))
		}
	})
	return err
}

func evaluate[R Number, V hypertrie.Value](ctx context.Context, cfg *config, sc *Subscript, operands []hypertrie.View[V], yield func(hypertrie.Key, R) bool) (err error) {
	ctx, span := cfg.tracer.Start(ctx, "einsum.Evaluate", trace.WithAttributes(
		attribute.String("subscript", sc.String()),
		attribute.Int("operands", len(operands)),
	))
	start := time.Now()
	entries := 0
	defer func() {
		status := "ok"
		switch {
		case errors.Is(err, ErrTimeout):
			status = "timeout"
			cfg.log.Warn("evaluation timed out", "subscript", sc, "entries", entries, "elapsed", time.Since(start))
		case err != nil:
			status = "error"
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("entries", entries))
		span.End()
		evaluations.WithLabelValues(status).Inc()
		evaluationDuration.Observe(time.Since(start).Seconds())
		resultEntries.Add(float64(entries))
	}()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	r, err := newRun[R](ctx, cfg, sc, operands)
	if err != nil {
		return err
	}
	cfg.log.Debug("evaluating", "subscript", sc, "order", r.est.order())
	return r.each(func(key hypertrie.Key, v R) bool {
		entries++
		return yield(key, v)
	})
}
