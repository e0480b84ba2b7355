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

	"github.com/wdamron/hypertrie/internal/amt"
)

// View is a read-only hypertrie which does not hold a reference to its nodes.
// A view stays valid until the hypertrie it was taken from is modified or closed;
// Retain turns it into an independent Hypertrie.
type View[V Value] struct {
	ctx      *Context[V]
	depth    int
	id       Identifier
	detached *singleEntryNode[V] // single entry not held by ctx
}

func (v View[V]) node() container[V] {
	if v.detached != nil {
		return container[V]{depth: v.depth, id: v.id, single: v.detached, one: v.ctx.one}
	}
	return v.ctx.container(v.depth, v.id)
}

// Context returns the context holding the nodes of v.
func (v View[V]) Context() *Context[V] { return v.ctx }

// Depth returns the key length of v.
func (v View[V]) Depth() int { return v.depth }

// Identifier returns the identifier of the root node of v.
func (v View[V]) Identifier() Identifier { return v.id }

// Size returns the number of entries in v.
func (v View[V]) Size() int {
	if v.id.kind == KindEmpty {
		return 0
	}
	return v.node().size()
}

// Empty reports whether v holds no entries.
func (v View[V]) Empty() bool { return v.id.kind == KindEmpty }

// Equal reports whether v and o hold the same entries. Hypertries of one
// context are compared by identifier.
func (v View[V]) Equal(o View[V]) bool {
	return v.ctx == o.ctx && v.depth == o.depth && v.id == o.id
}

// Get returns the value stored under key, or the zero value if key is absent.
func (v View[V]) Get(key Key) (V, error) {
	if len(key) != v.depth {
		var zero V
		return zero, fmt.Errorf("%w: got %d key parts for depth %d", ErrInvalidKey, len(key), v.depth)
	}
	return v.ctx.get(v.node(), key), nil
}

// All ranges over the entries of v.
func (v View[V]) All() iter.Seq2[Key, V] {
	if v.id.kind == KindEmpty {
		return func(func(Key, V) bool) {}
	}
	return v.ctx.entries(v.node(), nil)
}

// Slice returns the entries matching the fixed positions of sk, without those
// positions. Without fixed positions the result is v itself. With every
// position fixed the result is the value stored under that key, and the
// returned view is the zero View.
func (v View[V]) Slice(sk SliceKey) (View[V], V, error) {
	var zero V
	if len(sk) != v.depth {
		return View[V]{}, zero, fmt.Errorf("%w: got %d slice parts for depth %d", ErrInvalidKey, len(sk), v.depth)
	}
	fixed := sk.FixedCount()
	cur := v
	// fix positions from the back so the remaining positions keep their indexes
	for pos := len(sk) - 1; pos >= 0; pos-- {
		part, ok := sk[pos].Part()
		if !ok {
			continue
		}
		sub, value, ok := cur.fix(pos, part)
		switch {
		case !ok && fixed == v.depth:
			return View[V]{}, zero, nil
		case !ok:
			return View[V]{ctx: v.ctx, depth: v.depth - fixed}, zero, nil
		case cur.depth == 1:
			return View[V]{}, value, nil
		}
		cur = sub
	}
	return cur, zero, nil
}

// fix binds position pos of v to part. With depth 1 the result is a value,
// otherwise a view of depth-1.
func (v View[V]) fix(pos int, part KeyPart) (View[V], V, bool) {
	var zero V
	n := v.node()
	switch n.id.kind {
	case KindEmpty:
		return View[V]{}, zero, false
	case KindSingle, KindInline:
		if n.keyPart(pos) != part {
			return View[V]{}, zero, false
		}
		key, value := n.entry()
		if v.depth == 1 {
			return View[V]{}, value, true
		}
		return v.ctx.singleView(key.without(pos), value), zero, true
	}
	if v.depth == 1 {
		value, ok := n.full.values.Get(part)
		return View[V]{}, value, ok
	}
	child := n.full.edges[pos].Val(part)
	if child.Empty() {
		return View[V]{}, zero, false
	}
	return View[V]{ctx: v.ctx, depth: v.depth - 1, id: child}, zero, true
}

// singleView returns a view of one entry, borrowing the stored node when the
// context already holds it.
func (c *Context[V]) singleView(key Key, value V) View[V] {
	id := c.singleID(key, value)
	v := View[V]{ctx: c, depth: len(key), id: id}
	if id.kind == KindSingle && c.storage[len(key)-1].single(id) == nil {
		v.detached = &singleEntryNode[V]{key: key, value: value}
	}
	return v
}

// Cardinality returns the number of distinct key parts found at the given
// positions. Positions outside the depth of v are ignored.
func (v View[V]) Cardinality(positions ...int) int {
	valid := positions[:0:0]
	for _, pos := range positions {
		if pos >= 0 && pos < v.depth {
			valid = append(valid, pos)
		}
	}
	if len(valid) == 0 || v.id.kind == KindEmpty {
		return 0
	}
	n := v.node()
	if n.id.kind != KindFull {
		distinct := 0
		for i, pos := range valid {
			seen := false
			for _, prev := range valid[:i] {
				if n.keyPart(prev) == n.keyPart(pos) {
					seen = true
					break
				}
			}
			if !seen {
				distinct++
			}
		}
		return distinct
	}
	if len(valid) == 1 || v.depth == 1 {
		return n.full.edgeCount(v.depth, valid[0])
	}
	seen := amt.NewSet()
	for _, pos := range valid {
		for part := range n.full.edges[pos].Keys() {
			seen.Add(part)
		}
	}
	return seen.Len()
}

// Retain returns a Hypertrie holding its own reference to the nodes of v.
func (v View[V]) Retain() *Hypertrie[V] {
	if v.detached != nil {
		v.ctx.storage[v.depth-1].acquireSingle(v.id, v.detached.key, v.detached.value)
		return &Hypertrie[V]{View: View[V]{ctx: v.ctx, depth: v.depth, id: v.id}}
	}
	v.ctx.retain(v.depth, v.id)
	return &Hypertrie[V]{View: v}
}

func (c *Context[V]) entries(n container[V], prefix Key) iter.Seq2[Key, V] {
	return func(yield func(Key, V) bool) {
		c.walk(n, prefix, yield)
	}
}

func (c *Context[V]) walk(n container[V], prefix Key, yield func(Key, V) bool) bool {
	switch n.id.kind {
	case KindEmpty:
		return true
	case KindSingle, KindInline:
		key, value := n.entry()
		return yield(append(prefix.Clone(), key...), value)
	}
	if n.depth == 1 {
		for part, value := range n.full.values.All() {
			if !yield(append(prefix.Clone(), part), value) {
				return false
			}
		}
		return true
	}
	for part, child := range n.full.edges[0].All() {
		if !c.walk(c.container(n.depth-1, child), append(prefix, part), yield) {
			return false
		}
	}
	return true
}
