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
	"log/slog"
)

type options struct {
	log *slog.Logger
}

// Option configures a Context.
type Option func(*options)

// WithLogger sets the logger of a Context.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Context owns the nodes of every hypertrie created with it. A Context is not safe
// for concurrent mutation; read-only use from several goroutines is safe while no
// hypertrie of the context is mutated, cloned or closed.
type Context[V Value] struct {
	log     *slog.Logger
	storage [MaxDepth]nodeStorage[V]
	inline  bool // depth-1 single entries are held by their identifiers
	one     V
}

// NewContext returns an empty Context.
func NewContext[V Value](opts ...Option) *Context[V] {
	o := options{log: slog.Default().With("system", "hypertrie")}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Context[V]{log: o.log}
	for d := 1; d <= MaxDepth; d++ {
		c.storage[d-1] = newNodeStorage[V](d)
	}
	if one, ok := any(&c.one).(*bool); ok {
		*one, c.inline = true, true
	}
	return c
}

// Stats counts the nodes held by a Context, indexed by depth-1.
type Stats struct {
	Singles [MaxDepth]int
	Fulls   [MaxDepth]int
}

// Nodes returns the total number of stored nodes.
func (s Stats) Nodes() int {
	var n int
	for d := range s.Singles {
		n += s.Singles[d] + s.Fulls[d]
	}
	return n
}

// Stats returns the number of nodes currently stored in c.
func (c *Context[V]) Stats() Stats {
	var s Stats
	for d := range c.storage {
		s.Singles[d] = c.storage[d].singles.Len()
		s.Fulls[d] = c.storage[d].fulls.Len()
	}
	return s
}

func (c *Context[V]) notFound(depth int, id Identifier) {
	err := fmt.Errorf("%w: %s at depth %d", ErrNotFound, id, depth)
	c.log.Error("dangling identifier", "err", err)
	panic(err)
}

// container looks up the node named by id. Unknown identifiers panic.
func (c *Context[V]) container(depth int, id Identifier) container[V] {
	n := container[V]{depth: depth, id: id, one: c.one}
	switch id.kind {
	case KindSingle:
		if n.single = c.storage[depth-1].single(id); n.single == nil {
			c.notFound(depth, id)
		}
	case KindFull:
		if n.full = c.storage[depth-1].full(id); n.full == nil {
			c.notFound(depth, id)
		}
	}
	return n
}

// singleID returns the identifier of a node holding exactly one entry.
func (c *Context[V]) singleID(key Key, value V) Identifier {
	if c.inline && len(key) == 1 {
		return inlineID(key[0])
	}
	return Identifier{sum: hashEntry(key, value), kind: KindSingle}
}

// contentSum returns the combined entry hash of the node named by id.
func (c *Context[V]) contentSum(id Identifier) uint64 {
	if id.kind == KindInline {
		return hashEntry(Key{id.sum}, c.one)
	}
	return id.sum
}

func (c *Context[V]) retain(depth int, id Identifier) {
	switch id.kind {
	case KindSingle:
		c.container(depth, id).single.refs++
	case KindFull:
		c.container(depth, id).full.refs++
	}
}

// release drops one reference to the node named by id, freeing it and releasing
// its children once no reference is left.
func (c *Context[V]) release(depth int, id Identifier) {
	switch id.kind {
	case KindSingle:
		n := c.container(depth, id).single
		if n.refs--; n.refs == 0 {
			c.storage[depth-1].dropSingle(id)
		}
	case KindFull:
		n := c.container(depth, id).full
		if n.refs--; n.refs > 0 {
			return
		}
		c.storage[depth-1].takeFull(id)
		if depth == 1 {
			return
		}
		for pos := 0; pos < depth; pos++ {
			for _, child := range n.edges[pos].All() {
				c.release(depth-1, child)
			}
		}
	}
}

// get returns the value stored under key, walking one node per position.
func (c *Context[V]) get(n container[V], key Key) (value V) {
	for {
		switch n.id.kind {
		case KindEmpty:
			return value
		case KindSingle, KindInline:
			for pos := range key {
				if n.keyPart(pos) != key[pos] {
					return value
				}
			}
			return n.value()
		}
		if n.depth == 1 {
			return n.full.values.Val(key[0])
		}
		child := n.full.edges[0].Val(key[0])
		n, key = c.container(n.depth-1, child), key[1:]
	}
}

// other returns the entry of a two-entry node whose key differs from key.
func (c *Context[V]) other(n container[V], key Key) (Key, V) {
	for k, v := range c.entries(n, nil) {
		if !k.Equal(key) {
			return k, v
		}
	}
	panic("hypertrie: two-entry node without a second entry")
}

// change stores value under key within the node named by id and returns the
// identifier of the resulting node. The caller's reference to id is consumed and
// one reference to the result is handed back. An unshared full node is modified
// in place; a shared node is copied first.
func (c *Context[V]) change(depth int, id Identifier, key Key, value V) Identifier {
	n := c.container(depth, id)
	old := c.get(n, key)
	if old == value {
		return id
	}
	size, sum := n.size(), c.contentSum(id)
	if !isZero(old) {
		size, sum = size-1, sum^hashEntry(key, old)
	}
	if !isZero(value) {
		size, sum = size+1, sum^hashEntry(key, value)
	}

	switch size {
	case 0:
		c.release(depth, id)
		return Identifier{}
	case 1:
		k, v := key, value
		if isZero(value) {
			k, v = c.other(n, key)
		}
		nid := c.singleID(k, v)
		if nid.kind == KindSingle {
			c.storage[depth-1].acquireSingle(nid, k, v)
		}
		c.release(depth, id)
		return nid
	}

	nid := fullID(sum)
	storage := &c.storage[depth-1]
	if existing := storage.full(nid); existing != nil {
		existing.refs++
		dedupHits.Inc()
		c.release(depth, id)
		return nid
	}
	var full *fullNode[V]
	if id.kind == KindFull && n.full.refs == 1 {
		full = storage.takeFull(id)
		inPlaceUpdates.Inc()
	} else {
		full = c.copyNode(n)
		c.release(depth, id)
	}
	c.apply(depth, full, key, value)
	full.size, full.refs = size, 1
	storage.putFull(nid, full)
	return nid
}

// copyNode returns a new full node holding the entries of n. Children shared with
// n gain one reference each.
func (c *Context[V]) copyNode(n container[V]) *fullNode[V] {
	if n.id.kind != KindFull {
		full := newFullNode[V](n.depth)
		if !n.empty() {
			key, value := n.entry()
			c.apply(n.depth, full, key, value)
		}
		nodesAllocated.WithLabelValues(KindFull.String()).Inc()
		return full
	}
	nodeClones.Inc()
	nodesAllocated.WithLabelValues(KindFull.String()).Inc()
	src, full := n.full, &fullNode[V]{size: n.full.size}
	if n.depth == 1 {
		full.values = src.values.Clone()
		return full
	}
	for pos := 0; pos < n.depth; pos++ {
		full.edges[pos] = src.edges[pos].Clone()
		for _, child := range src.edges[pos].All() {
			c.retain(n.depth-1, child)
		}
	}
	return full
}

// apply writes one entry into the edge tables of an unshared full node.
func (c *Context[V]) apply(depth int, full *fullNode[V], key Key, value V) {
	if depth == 1 {
		if isZero(value) {
			full.values.Del(key[0])
		} else {
			full.values.Set(key[0], value)
		}
		return
	}
	for pos := 0; pos < depth; pos++ {
		child := full.edges[pos].Val(key[pos])
		child = c.change(depth-1, child, key.without(pos), value)
		if child.Empty() {
			full.edges[pos].Del(key[pos])
		} else {
			full.edges[pos].Set(key[pos], child)
		}
	}
}
