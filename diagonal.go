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

package hypertrie

import (
	"fmt"
	"iter"
	"slices"
)

// Diagonal finds the entries of a hypertrie that carry one key part at every
// position of a fixed set of positions.
type Diagonal[V Value] struct {
	view      View[V]
	positions []int // descending
	found     bool
	sub       View[V]
	scalar    V
}

// NewDiagonal returns a diagonal over the given positions of v.
func NewDiagonal[V Value](v View[V], positions ...int) (*Diagonal[V], error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: no diagonal positions", ErrInvalidPosition)
	}
	ps := slices.Clone(positions)
	slices.Sort(ps)
	for i, pos := range ps {
		if pos < 0 || pos >= v.depth || (i > 0 && ps[i-1] == pos) {
			return nil, fmt.Errorf("%w: %v for depth %d", ErrInvalidPosition, positions, v.depth)
		}
	}
	slices.Reverse(ps)
	return &Diagonal[V]{view: v, positions: ps}, nil
}

// Find focuses d on part and reports whether an entry holds part at every
// diagonal position. The current value or view must not be read after Find
// returned false.
func (d *Diagonal[V]) Find(part KeyPart) bool {
	var zero V
	d.found, d.sub, d.scalar = false, View[V]{}, zero
	if n := d.view.node(); n.id.kind == KindFull && d.view.depth > 1 {
		for _, pos := range d.positions {
			if !n.full.edges[pos].Has(part) {
				return false
			}
		}
	}
	cur := d.view
	for _, pos := range d.positions {
		sub, value, ok := cur.fix(pos, part)
		if !ok {
			return false
		}
		if cur.depth == 1 {
			d.scalar = value
		}
		cur = sub
	}
	d.found, d.sub = true, cur
	return true
}

// Scalar returns the value found by the last successful Find when every
// position of the hypertrie is on the diagonal.
func (d *Diagonal[V]) Scalar() V { return d.scalar }

// View returns the remaining positions of the entries found by the last
// successful Find.
func (d *Diagonal[V]) View() View[V] { return d.sub }

// Found reports whether the last Find succeeded.
func (d *Diagonal[V]) Found() bool { return d.found }

// Remaining returns the depth left after the diagonal positions are bound.
func (d *Diagonal[V]) Remaining() int { return d.view.depth - len(d.positions) }

// Candidates ranges over the key parts of the smallest edge table among the
// diagonal positions. Every key part accepted by Find is included.
func (d *Diagonal[V]) Candidates() iter.Seq[KeyPart] {
	return func(yield func(KeyPart) bool) {
		n := d.view.node()
		switch n.id.kind {
		case KindEmpty:
			return
		case KindSingle, KindInline:
			part := n.keyPart(d.positions[0])
			for _, pos := range d.positions[1:] {
				if n.keyPart(pos) != part {
					return
				}
			}
			yield(part)
			return
		}
		if d.view.depth == 1 {
			for part := range n.full.values.Keys() {
				if !yield(part) {
					return
				}
			}
			return
		}
		for part := range n.full.edges[d.smallest(n)].Keys() {
			if !yield(part) {
				return
			}
		}
	}
}

// Size returns the number of key parts Candidates ranges over.
func (d *Diagonal[V]) Size() int {
	n := d.view.node()
	switch n.id.kind {
	case KindEmpty:
		return 0
	case KindSingle, KindInline:
		return 1
	}
	return n.full.edgeCount(d.view.depth, d.smallest(n))
}

func (d *Diagonal[V]) smallest(n container[V]) int {
	best := d.positions[0]
	for _, pos := range d.positions[1:] {
		if n.full.edgeCount(d.view.depth, pos) < n.full.edgeCount(d.view.depth, best) {
			best = pos
		}
	}
	return best
}
