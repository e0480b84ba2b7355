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

import "github.com/wdamron/hypertrie/internal/amt"

type singleEntryNode[V Value] struct {
	key   Key
	value V
	refs  int
}

// fullNode holds two or more entries. For depth > 1, edges[pos] maps each key part
// seen at pos to the node of depth-1 holding the matching entries without pos.
// A node of depth 1 maps key parts to values directly.
type fullNode[V Value] struct {
	size   int
	refs   int
	edges  [MaxDepth]amt.Table[Identifier]
	values amt.Table[V]
}

func newFullNode[V Value](depth int) *fullNode[V] {
	n := &fullNode[V]{}
	if depth == 1 {
		n.values = amt.NewTable[V]()
		return n
	}
	for pos := 0; pos < depth; pos++ {
		n.edges[pos] = amt.NewTable[Identifier]()
	}
	return n
}

// edgeCount returns the number of distinct key parts at pos.
func (n *fullNode[V]) edgeCount(depth, pos int) int {
	if depth == 1 {
		return n.values.Len()
	}
	return n.edges[pos].Len()
}

// container is a borrowed view of one node: a stored node, a detached single
// entry, or an inline identifier.
type container[V Value] struct {
	depth  int
	id     Identifier
	single *singleEntryNode[V]
	full   *fullNode[V]
	one    V // value of inline entries
}

func (n container[V]) empty() bool { return n.id.kind == KindEmpty }

func (n container[V]) size() int {
	switch n.id.kind {
	case KindEmpty:
		return 0
	case KindFull:
		return n.full.size
	}
	return 1
}

// keyPart returns the key part at pos of a single-entry container.
func (n container[V]) keyPart(pos int) KeyPart {
	if n.id.kind == KindInline {
		return n.id.sum
	}
	return n.single.key[pos]
}

// entry returns the entry of a single-entry container.
func (n container[V]) entry() (Key, V) {
	if n.id.kind == KindInline {
		return Key{n.id.sum}, n.one
	}
	return n.single.key, n.single.value
}

// value returns the value of a single-entry container.
func (n container[V]) value() V {
	if n.id.kind == KindInline {
		return n.one
	}
	return n.single.value
}
