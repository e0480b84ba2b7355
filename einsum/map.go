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
	"encoding/binary"
	"fmt"
	"iter"

	"github.com/wdamron/hypertrie"
	"github.com/wdamron/hypertrie/internal/amt"
)

// Map holds einsum result entries of one key length.
type Map[R Number] struct {
	depth   int
	entries amt.BytesMap[R]
}

// NewMap returns an empty map for keys of the given length.
func NewMap[R Number](depth int) *Map[R] {
	return &Map[R]{depth: depth, entries: amt.NewBytesMap[R]()}
}

// Depth returns the key length of m.
func (m *Map[R]) Depth() int { return m.depth }

// Len returns the number of entries in m.
func (m *Map[R]) Len() int { return m.entries.Len() }

// Get returns the value stored under key, or zero.
func (m *Map[R]) Get(key ...hypertrie.KeyPart) R {
	if len(key) != m.depth {
		return 0
	}
	return m.entries.Val(encodeKey(key))
}

// Add adds v to the value stored under key. Entries whose value reaches
// zero are removed.
func (m *Map[R]) Add(key hypertrie.Key, v R) {
	if len(key) != m.depth || v == 0 {
		return
	}
	kb := encodeKey(key)
	var zero bool
	m.entries.Mod(kb, func(cur *R, _ bool) {
		*cur += v
		zero = *cur == 0
	})
	if zero {
		m.entries.Del(kb)
	}
}

// All ranges over the entries of m.
func (m *Map[R]) All() iter.Seq2[hypertrie.Key, R] {
	return func(yield func(hypertrie.Key, R) bool) {
		for kb, v := range m.entries.All() {
			if !yield(decodeKey(kb), v) {
				return
			}
		}
	}
}

// Hypertrie stores the entries of m in a new hypertrie of ctx.
func (m *Map[R]) Hypertrie(ctx *hypertrie.Context[R]) (*hypertrie.Hypertrie[R], error) {
	h, err := hypertrie.New(ctx, m.depth)
	if err != nil {
		return nil, fmt.Errorf("result map: %w", err)
	}
	for key, v := range m.All() {
		if err := h.Set(key, v); err != nil {
			h.Close()
			return nil, err
		}
	}
	return h, nil
}

func encodeKey(key hypertrie.Key) []byte {
	kb := make([]byte, 0, 8*len(key))
	for _, part := range key {
		kb = binary.BigEndian.AppendUint64(kb, part)
	}
	return kb
}

func decodeKey(kb []byte) hypertrie.Key {
	key := make(hypertrie.Key, len(kb)/8)
	for i := range key {
		key[i] = binary.BigEndian.Uint64(kb[8*i:])
	}
	return key
}
