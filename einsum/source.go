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
	"iter"

	"github.com/wdamron/hypertrie"
)

// Number is the value type of einsum results. Boolean inputs count as 1.
type Number interface {
	int | int64 | float64
}

func convert[R Number, V hypertrie.Value](v V) R {
	switch x := any(v).(type) {
	case bool:
		if x {
			return 1
		}
	case int:
		return R(x)
	case int64:
		return R(x)
	case float64:
		return R(x)
	}
	return 0
}

// source is an operand during evaluation: a hypertrie whose bound positions
// were removed, or a scalar once every position is bound. Positions passed to
// a source are valid and distinct.
type source[R Number] interface {
	depth() int
	empty() bool
	scalar() R
	// sum adds up every value.
	sum() R
	cardinality(positions []int) int
	candidates(positions []int) iter.Seq[hypertrie.KeyPart]
	fix(positions []int, part hypertrie.KeyPart) (source[R], bool)
	cacheKey(positions []int) (cardKey, bool)
}

// cardKey names the cardinality of a set of positions of a node. Nodes with
// equal identifiers hold equal entries.
type cardKey struct {
	id        hypertrie.Identifier
	depth     int
	positions uint32
}

type trieSource[R Number, V hypertrie.Value] struct {
	view hypertrie.View[V]
}

func (s trieSource[R, V]) depth() int  { return s.view.Depth() }
func (s trieSource[R, V]) empty() bool { return s.view.Empty() }
func (s trieSource[R, V]) scalar() R   { return 0 }

func (s trieSource[R, V]) sum() R {
	var zero V
	if _, ok := any(zero).(bool); ok {
		return R(s.view.Size())
	}
	var total R
	for _, v := range s.view.All() {
		total += convert[R](v)
	}
	return total
}

func (s trieSource[R, V]) cardinality(positions []int) int {
	return s.view.Cardinality(positions...)
}

func (s trieSource[R, V]) candidates(positions []int) iter.Seq[hypertrie.KeyPart] {
	d, err := hypertrie.NewDiagonal(s.view, positions...)
	if err != nil {
		return func(func(hypertrie.KeyPart) bool) {}
	}
	return d.Candidates()
}

func (s trieSource[R, V]) fix(positions []int, part hypertrie.KeyPart) (source[R], bool) {
	d, err := hypertrie.NewDiagonal(s.view, positions...)
	if err != nil || !d.Find(part) {
		return nil, false
	}
	if d.Remaining() == 0 {
		return scalarSource[R]{value: convert[R](d.Scalar())}, true
	}
	return trieSource[R, V]{view: d.View()}, true
}

func (s trieSource[R, V]) cacheKey(positions []int) (cardKey, bool) {
	key := cardKey{id: s.view.Identifier(), depth: s.view.Depth()}
	for _, pos := range positions {
		key.positions |= 1 << pos
	}
	return key, true
}

// scalarSource is an operand with every position bound.
type scalarSource[R Number] struct {
	value R
}

func (s scalarSource[R]) depth() int  { return 0 }
func (s scalarSource[R]) empty() bool { return s.value == 0 }
func (s scalarSource[R]) scalar() R   { return s.value }
func (s scalarSource[R]) sum() R      { return s.value }

func (s scalarSource[R]) cardinality([]int) int { return 0 }

func (s scalarSource[R]) candidates([]int) iter.Seq[hypertrie.KeyPart] {
	return func(func(hypertrie.KeyPart) bool) {}
}

func (s scalarSource[R]) fix([]int, hypertrie.KeyPart) (source[R], bool) { return nil, false }

func (s scalarSource[R]) cacheKey([]int) (cardKey, bool) { return cardKey{}, false }

// term is a source together with the labels of its remaining positions.
type term[R Number] struct {
	labels []int
	src    source[R]
}

// positions returns the positions of t carrying label, or nil.
func (t term[R]) positions(label int) []int {
	var ps []int
	for pos, l := range t.labels {
		if l == label {
			ps = append(ps, pos)
		}
	}
	return ps
}

// without returns the labels of t with label removed.
func (t term[R]) without(label int) []int {
	labels := make([]int, 0, len(t.labels))
	for _, l := range t.labels {
		if l != label {
			labels = append(labels, l)
		}
	}
	return labels
}
