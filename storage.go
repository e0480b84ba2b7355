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
	"strconv"

	"github.com/wdamron/hypertrie/internal/amt"
)

// nodeStorage owns the nodes of one depth, keyed by identifier sum. Single-entry
// and full nodes live in separate tables.
type nodeStorage[V Value] struct {
	depth   string // metrics label
	singles amt.Table[*singleEntryNode[V]]
	fulls   amt.Table[*fullNode[V]]
}

func newNodeStorage[V Value](depth int) nodeStorage[V] {
	return nodeStorage[V]{
		depth:   strconv.Itoa(depth),
		singles: amt.NewTable[*singleEntryNode[V]](),
		fulls:   amt.NewTable[*fullNode[V]](),
	}
}

func (s *nodeStorage[V]) single(id Identifier) *singleEntryNode[V] { return s.singles.Val(id.sum) }

func (s *nodeStorage[V]) full(id Identifier) *fullNode[V] { return s.fulls.Val(id.sum) }

// acquireSingle returns the stored node for a single entry with one more reference,
// allocating it on first use.
func (s *nodeStorage[V]) acquireSingle(id Identifier, key Key, value V) *singleEntryNode[V] {
	var n *singleEntryNode[V]
	s.singles.Mod(id.sum, func(p **singleEntryNode[V], ok bool) {
		if !ok {
			*p = &singleEntryNode[V]{key: key.Clone(), value: value}
			nodesAllocated.WithLabelValues(KindSingle.String()).Inc()
			liveNodes.WithLabelValues(KindSingle.String(), s.depth).Inc()
		} else {
			dedupHits.Inc()
		}
		n = *p
	})
	n.refs++
	return n
}

func (s *nodeStorage[V]) putFull(id Identifier, n *fullNode[V]) {
	s.fulls.Set(id.sum, n)
	liveNodes.WithLabelValues(KindFull.String(), s.depth).Inc()
}

// takeFull removes a full node from the table without releasing its children.
func (s *nodeStorage[V]) takeFull(id Identifier) *fullNode[V] {
	n := s.fulls.Val(id.sum)
	if n != nil {
		s.fulls.Del(id.sum)
		liveNodes.WithLabelValues(KindFull.String(), s.depth).Dec()
	}
	return n
}

func (s *nodeStorage[V]) dropSingle(id Identifier) {
	if s.singles.Del(id.sum) {
		liveNodes.WithLabelValues(KindSingle.String(), s.depth).Dec()
	}
}
