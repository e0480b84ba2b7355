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

import "fmt"

// Hypertrie is a mutable hypertrie holding one reference to its root node.
// Clone shares all nodes with the clone; Set copies a node before changing it
// while the node is shared, so clones never observe each other's changes.
// Close releases the reference. A Hypertrie must not be copied by value.
type Hypertrie[V Value] struct {
	View[V]
}

// New returns an empty hypertrie of the given depth.
func New[V Value](ctx *Context[V], depth int) (*Hypertrie[V], error) {
	if depth < 1 || depth > MaxDepth {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidDepth, depth, MaxDepth)
	}
	return &Hypertrie[V]{View: View[V]{ctx: ctx, depth: depth}}, nil
}

// Set stores value under key. Setting the zero value removes key.
func (h *Hypertrie[V]) Set(key Key, value V) error {
	if len(key) != h.depth {
		return fmt.Errorf("%w: got %d key parts for depth %d", ErrInvalidKey, len(key), h.depth)
	}
	h.id = h.ctx.change(h.depth, h.id, key, value)
	return nil
}

// Clone returns a hypertrie sharing the nodes of h.
func (h *Hypertrie[V]) Clone() *Hypertrie[V] { return h.View.Retain() }

// Assign makes h hold the entries of v, releasing the previous root of h.
func (h *Hypertrie[V]) Assign(v View[V]) error {
	if v.ctx != h.ctx {
		return fmt.Errorf("%w: cannot assign a view of another context", ErrInvalidContext)
	}
	if v.depth != h.depth {
		return fmt.Errorf("%w: cannot assign depth %d view to depth %d hypertrie", ErrInvalidDepth, v.depth, h.depth)
	}
	r := v.Retain()
	h.ctx.release(h.depth, h.id)
	h.id = r.id
	return nil
}

// Close releases the nodes of h. h is empty afterwards.
func (h *Hypertrie[V]) Close() {
	h.ctx.release(h.depth, h.id)
	h.id = Identifier{}
}

// Slice returns the entries matching the fixed positions of sk as a new
// hypertrie sharing the matched nodes. With every position fixed it returns
// the stored value and a nil hypertrie.
func (h *Hypertrie[V]) Slice(sk SliceKey) (*Hypertrie[V], V, error) {
	sub, value, err := h.View.Slice(sk)
	if err != nil || sub.ctx == nil {
		return nil, value, err
	}
	return sub.Retain(), value, nil
}
