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
	"fmt"

	"github.com/wdamron/hypertrie"
	"github.com/wdamron/hypertrie/internal/amt"
)

// emitFunc receives the value of the current binding. The bound labels are
// read from the run. Returning false stops the evaluation.
type emitFunc[R Number] func(value R) bool

// run holds the state of one evaluation of a plan.
type run[R Number] struct {
	ctx     context.Context
	cfg     *config
	plan    *plan
	sources []source[R] // by slot
	est     *estimator[R]
	env     []hypertrie.KeyPart
	bound   []bool
	// aggregating is set while bindings are summed into one entry.
	aggregating bool
	// nesting counts the optional groups being joined.
	nesting int
	steps   int
	err     error
}

func newRun[R Number, V hypertrie.Value](ctx context.Context, cfg *config, sc *Subscript, inputs []hypertrie.View[V]) (*run[R], error) {
	p := compile(sc)
	r := &run[R]{
		ctx:     ctx,
		cfg:     cfg,
		plan:    p,
		sources: make([]source[R], len(p.slots)),
		env:     make([]hypertrie.KeyPart, len(p.labels)),
		bound:   make([]bool, len(p.labels)),
	}
	for _, sl := range p.slots {
		if !sl.operand.Nested() {
			r.sources[sl.index] = trieSource[R, V]{view: inputs[sl.operand.Input]}
			continue
		}
		src, err := materialize[R](ctx, cfg, sl.operand, inputs)
		if err != nil {
			return nil, err
		}
		r.sources[sl.index] = src
	}
	est, err := newEstimator(p, r.sources, cfg.cacheSize)
	if err != nil {
		return nil, err
	}
	r.est = est
	return r, nil
}

// materialize evaluates the alternatives of a nested operand into one source.
// Alternatives are merged on equal keys, adding up values unless every
// alternative has set semantics.
func materialize[R Number, V hypertrie.Value](ctx context.Context, cfg *config, op *Operand, inputs []hypertrie.View[V]) (source[R], error) {
	ctx, span := cfg.tracer.Start(ctx, "einsum.materialize")
	defer span.End()
	distinct := true
	for _, alt := range op.Alternatives {
		distinct = distinct && alt.Distinct
	}
	merge := func(cur, v R) R {
		if distinct {
			return 1
		}
		return cur + v
	}
	if len(op.Labels) == 0 {
		var total R
		for _, alt := range op.Alternatives {
			r, err := newRun[R](ctx, cfg, alt, inputs)
			if err != nil {
				return nil, err
			}
			if err := r.each(func(_ hypertrie.Key, v R) bool {
				total = merge(total, v)
				return true
			}); err != nil {
				return nil, err
			}
		}
		return scalarSource[R]{value: total}, nil
	}
	h, err := hypertrie.New(hypertrie.NewContext[R](hypertrie.WithLogger(cfg.log)), len(op.Labels))
	if err != nil {
		return nil, err
	}
	for _, alt := range op.Alternatives {
		r, err := newRun[R](ctx, cfg, alt, inputs)
		if err != nil {
			return nil, err
		}
		var setErr error
		if err := r.each(func(key hypertrie.Key, v R) bool {
			setErr = accumulate(h, key, v, merge)
			return setErr == nil
		}); err != nil {
			return nil, err
		}
		if setErr != nil {
			return nil, fmt.Errorf("nested operand %q: %w", string(labelRunes(op.Labels)), setErr)
		}
	}
	cfg.log.Debug("materialized nested operand", "labels", string(labelRunes(op.Labels)), "entries", h.Size())
	return trieSource[R, R]{view: h.View}, nil
}

// accumulate merges v into the value stored under key.
func accumulate[R Number](h *hypertrie.Hypertrie[R], key hypertrie.Key, v R, merge func(cur, v R) R) error {
	cur, err := h.Get(key)
	if err != nil {
		return err
	}
	return h.Set(key, merge(cur, v))
}

func labelRunes(labels []Label) []rune {
	rs := make([]rune, len(labels))
	for i, l := range labels {
		rs[i] = rune(l)
	}
	return rs
}

// each streams the result entries to yield and returns the error which ended
// the evaluation, if any.
func (r *run[R]) each(yield func(hypertrie.Key, R) bool) error {
	terms := make([]term[R], 0, len(r.plan.root.slots))
	for _, sl := range r.plan.root.slots {
		src := r.sources[sl.index]
		if src.empty() {
			return nil
		}
		terms = append(terms, term[R]{labels: sl.labels, src: src})
	}
	r.join(terms, r.plan.root.optional, 1, r.sink(yield))
	return r.err
}

// sink builds result keys from the bound result labels.
func (r *run[R]) sink(yield func(hypertrie.Key, R) bool) emitFunc[R] {
	var seen amt.BytesMap[struct{}]
	if r.plan.sc.Distinct {
		seen = amt.NewBytesMap[struct{}]()
	}
	return func(v R) bool {
		key := make(hypertrie.Key, len(r.plan.result))
		for i, l := range r.plan.result {
			if key[i] = Unbound; r.bound[l] {
				key[i] = r.env[l]
			}
		}
		if !seen.Nil() {
			kb := encodeKey(key)
			if seen.Ptr(kb) != nil {
				return true
			}
			seen.Set(kb, struct{}{})
			v = 1
		}
		return yield(key, v)
	}
}

// tick counts a join step and checks the evaluation context every
// checkInterval steps.
func (r *run[R]) tick() bool {
	if r.err != nil {
		return false
	}
	if r.steps++; r.steps%r.cfg.checkInterval == 0 {
		if err := r.ctx.Err(); err != nil {
			r.err = fmt.Errorf("%w after %d steps: %w", ErrTimeout, r.steps, err)
			return false
		}
	}
	return true
}

// join emits the bindings of the unbound labels of terms and optional which
// yield a nonzero product, multiplied by value.
func (r *run[R]) join(terms []term[R], optional []*scope, value R, emit emitFunc[R]) bool {
	if !r.tick() {
		return false
	}
	rest := make([]term[R], 0, len(terms))
	for _, t := range terms {
		switch {
		case t.src.depth() == 0:
			value *= t.src.scalar()
		case t.src.empty():
			return true
		default:
			rest = append(rest, t)
		}
	}
	if value == 0 {
		return true
	}
	if len(rest) == 0 && len(optional) == 0 {
		return emit(value)
	}
	if !r.aggregating && r.nesting == 0 && !r.pending(rest, optional) {
		return r.count(rest, optional, value, emit)
	}
	label, ok, err := r.est.choose(rest)
	if err != nil {
		r.cfg.log.Error("join scheduling failed", "subscript", r.plan.sc, "err", err)
		r.err = err
		return false
	}
	if !ok {
		// only lonely labels are left
		for _, t := range rest {
			value *= t.src.sum()
		}
		if value == 0 {
			return true
		}
		return r.leftJoin(optional, value, emit)
	}
	if len(optional) == 0 {
		if comps := r.components(rest); len(comps) > 1 {
			return r.cartesian(comps, value, emit)
		}
	}
	return r.joinOn(label, rest, optional, value, emit)
}

// pending reports whether a result label is still unbound.
func (r *run[R]) pending(terms []term[R], optional []*scope) bool {
	for _, t := range terms {
		for _, l := range t.labels {
			if r.plan.isResult[l] {
				return true
			}
		}
	}
	for _, s := range optional {
		if s.pending(r.plan, r.bound) {
			return true
		}
	}
	return false
}

// joinOn binds label to each key part found in every term carrying it.
func (r *run[R]) joinOn(label int, terms []term[R], optional []*scope, value R, emit emitFunc[R]) bool {
	positions := make([][]int, len(terms))
	driver, least := -1, 0
	for i, t := range terms {
		if positions[i] = t.positions(label); positions[i] == nil {
			continue
		}
		if c := r.est.cardinality(t, positions[i]); driver < 0 || c < least {
			driver, least = i, c
		}
	}
	joinSteps.Inc()
	for part := range terms[driver].src.candidates(positions[driver]) {
		next := make([]term[R], 0, len(terms))
		matched := true
		for i, t := range terms {
			if positions[i] == nil {
				next = append(next, t)
				continue
			}
			src, ok := t.src.fix(positions[i], part)
			if !ok {
				matched = false
				break
			}
			next = append(next, term[R]{labels: t.without(label), src: src})
		}
		if !matched {
			continue
		}
		r.env[label], r.bound[label] = part, true
		more := r.join(next, optional, value, emit)
		r.bound[label] = false
		if !more {
			return false
		}
	}
	return true
}

// leftJoin joins the optional groups in order. A group without matches
// contributes 1 and leaves its labels unbound.
func (r *run[R]) leftJoin(groups []*scope, value R, emit emitFunc[R]) bool {
	if len(groups) == 0 {
		return emit(value)
	}
	g, rest := groups[0], groups[1:]
	matched := false
	if terms, ok := r.instantiate(g); ok {
		r.nesting++
		more := r.join(terms, g.optional, value, func(v R) bool {
			matched = true
			return r.leftJoin(rest, v, emit)
		})
		r.nesting--
		if !more {
			return false
		}
	}
	if matched {
		return true
	}
	return r.leftJoin(rest, value, emit)
}

// instantiate returns the terms of g with the bound labels fixed. It reports
// false when an operand has no entries for the bindings.
func (r *run[R]) instantiate(g *scope) ([]term[R], bool) {
	terms := make([]term[R], 0, len(g.slots))
	for _, sl := range g.slots {
		t := term[R]{labels: sl.labels, src: r.sources[sl.index]}
		for i := 0; i < len(t.labels); {
			l := t.labels[i]
			if !r.bound[l] {
				i++
				continue
			}
			src, ok := t.src.fix(t.positions(l), r.env[l])
			if !ok {
				return nil, false
			}
			t = term[R]{labels: t.without(l), src: src}
		}
		if t.src.empty() {
			return nil, false
		}
		terms = append(terms, t)
	}
	return terms, true
}

// count sums the bindings of the remaining labels into a single entry. Under
// set semantics the first binding decides.
func (r *run[R]) count(terms []term[R], optional []*scope, value R, emit emitFunc[R]) bool {
	var total R
	stopped := false
	r.aggregating = true
	more := r.join(terms, optional, value, func(v R) bool {
		total += v
		if r.plan.sc.Distinct {
			stopped = true
			return false
		}
		return true
	})
	r.aggregating = false
	if !more && !stopped {
		return false
	}
	if total == 0 {
		return true
	}
	return emit(total)
}

// components splits terms into groups which share no unbound join label.
func (r *run[R]) components(terms []term[R]) [][]term[R] {
	parent := make([]int, len(terms))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	owner := make([]int, len(r.plan.labels))
	for i := range owner {
		owner[i] = -1
	}
	for i, t := range terms {
		for _, l := range t.labels {
			if r.plan.lonely[l] {
				continue
			}
			if owner[l] < 0 {
				owner[l] = i
				continue
			}
			parent[find(i)] = find(owner[l])
		}
	}
	index := make(map[int]int, len(terms))
	var comps [][]term[R]
	for i, t := range terms {
		root := find(i)
		c, ok := index[root]
		if !ok {
			c = len(comps)
			index[root] = c
			comps = append(comps, nil)
		}
		comps[c] = append(comps[c], t)
	}
	return comps
}

// factor holds the result bindings of one component with their values.
type factor[R Number] struct {
	labels []int
	parts  []hypertrie.KeyPart // len(labels) per row
	values []R
}

// cartesian evaluates independent components separately and emits the
// product of their bindings.
func (r *run[R]) cartesian(comps [][]term[R], value R, emit emitFunc[R]) bool {
	factors := make([]*factor[R], 0, len(comps)-1)
	for _, comp := range comps[1:] {
		f := &factor[R]{labels: r.resultLabels(comp)}
		more := r.join(comp, nil, 1, func(v R) bool {
			for _, l := range f.labels {
				f.parts = append(f.parts, r.env[l])
			}
			f.values = append(f.values, v)
			return true
		})
		if !more {
			return false
		}
		if len(f.values) == 0 {
			return true
		}
		factors = append(factors, f)
	}
	return r.join(comps[0], nil, value, func(v R) bool {
		return r.product(factors, v, emit)
	})
}

func (r *run[R]) product(factors []*factor[R], value R, emit emitFunc[R]) bool {
	if len(factors) == 0 {
		return emit(value)
	}
	f := factors[0]
	for row, v := range f.values {
		for i, l := range f.labels {
			r.env[l], r.bound[l] = f.parts[row*len(f.labels)+i], true
		}
		more := r.product(factors[1:], value*v, emit)
		for _, l := range f.labels {
			r.bound[l] = false
		}
		if !more {
			return false
		}
	}
	return true
}

// resultLabels returns the result labels carried by terms.
func (r *run[R]) resultLabels(terms []term[R]) []int {
	var labels []int
	seen := make([]bool, len(r.plan.labels))
	for _, t := range terms {
		for _, l := range t.labels {
			if r.plan.isResult[l] && !seen[l] {
				seen[l] = true
				labels = append(labels, l)
			}
		}
	}
	return labels
}
