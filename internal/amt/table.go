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

package amt

import (
	"iter"
	"unsafe"
)

// Table maps 64-bit keys to values. The zero Table is empty and read-only;
// tables returned by NewTable may be modified. A table value is safe to copy,
// and copies share their contents.
type Table[V any] struct {
	*root
}

type tablekv[V any] struct {
	// The key is stored inline within the leaf link's pmap and tmap fields.
	v V
}

func keybytes(k uint64) [8]byte {
	return [8]byte{byte(k), byte(k >> 8), byte(k >> 16), byte(k >> 24), byte(k >> 32), byte(k >> 40), byte(k >> 48), byte(k >> 56)}
}

func leafKey(l *link) uint64 { return uint64(l.pmap) | uint64(l.tmap)<<32 }

// NewTable returns an initialized table.
func NewTable[V any]() Table[V] {
	return Table[V]{newRoot()}
}

// Nil returns true if m is not initialized.
func (m Table[V]) Nil() bool { return m.root == nil }

// Len returns the number of values in m.
func (m Table[V]) Len() int { return m.root.Len() }

// Dep returns the average (mean) depth of all values in m.
func (m Table[V]) Dep() float64 { return m.root.Dep() }

// Has returns true if m contains key.
func (m Table[V]) Has(key uint64) bool { return m.Ptr(key) != nil }

// Get returns the value for key, or a zero value and false if the key is missing.
func (m Table[V]) Get(key uint64) (value V, ok bool) {
	if ptr := m.Ptr(key); ptr != nil {
		value, ok = *ptr, true
	}
	return
}

// Val returns the value for key, or a zero value if the key is missing.
func (m Table[V]) Val(key uint64) (value V) {
	if ptr := m.Ptr(key); ptr != nil {
		value = *ptr
	}
	return
}

// Ptr returns a pointer to the value for key, or nil if the key is missing.
// The value may be updated through the returned pointer.
func (m Table[V]) Ptr(key uint64) *V {
	if m.root == nil {
		return nil
	}
	kb := keybytes(key)
	var w walk
	w.start(m.root, kb[:])
	for w.present() {
		if !w.leaf() {
			w.descend()
			continue
		}
		if item := w.item(); leafKey(item) == key {
			return &(*tablekv[V])(item.ptr).v
		}
		return nil // key mismatch
	}
	return nil // item missing
}

// Set adds or updates the value for key.
func (m Table[V]) Set(key uint64, value V) {
	m.Mod(key, func(v *V, _ bool) { *v = value })
}

// Mod modifies the value for key using the mod callback. The mod callback receives
// a pointer to the existing or new value for key, and true if the key existed.
func (m Table[V]) Mod(key uint64, mod func(*V, bool)) {
	kb := keybytes(key)
	var w walk
	w.start(m.root, kb[:])
	for w.present() {
		if !w.leaf() {
			w.descend()
			continue
		}
		item := w.item()
		ckey := leafKey(item)
		if ckey == key { // update existing
			mod(&(*tablekv[V])(item.ptr).v, true)
			return
		}
		val := &tablekv[V]{}
		mod(&val.v, false)
		ckb := keybytes(ckey)
		w.split(m.root, ckb[:], link{ptr: unsafe.Pointer(val), pmap: uint32(key), tmap: uint32(key >> 32)})
		return
	}
	val := &tablekv[V]{}
	mod(&val.v, false)
	w.insert(m.root, link{ptr: unsafe.Pointer(val), pmap: uint32(key), tmap: uint32(key >> 32)})
}

// Del deletes the value for key and reports whether it was present.
func (m Table[V]) Del(key uint64) bool {
	if m.root == nil {
		return false
	}
	path := m.path[:0]
	kb := keybytes(key)
	var w walk
	w.start(m.root, kb[:])
	for w.present() {
		path = append(path, pathLink{w.radix, w.l})
		if !w.leaf() {
			w.descend()
			continue
		}
		if leafKey(w.item()) != key { // key missing
			break
		}
		w.unlink(m.root, path)
		return true
	}
	for i := range path {
		path[i].link = nil
	}
	return false
}

// All ranges over the keys and values in m. The iteration order is not
// randomized for each call.
func (m Table[V]) All() iter.Seq2[uint64, V] {
	return func(yield func(uint64, V) bool) {
		if m.root == nil {
			return
		}
		scan(&m.link, func(item *link) bool {
			return yield(leafKey(item), (*tablekv[V])(item.ptr).v)
		})
	}
}

// Keys ranges over the keys in m.
func (m Table[V]) Keys() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		if m.root == nil {
			return
		}
		scan(&m.link, func(item *link) bool { return yield(leafKey(item)) })
	}
}

// Clone returns an independent copy of m with the same hash seed and structure.
func (m Table[V]) Clone() Table[V] {
	c := NewTable[V]()
	if m.root == nil {
		return c
	}
	c.seed, c.len, c.dep = m.seed, m.len, m.dep
	copyLinks(&c.link, &m.link, func(p unsafe.Pointer) unsafe.Pointer {
		kv := *(*tablekv[V])(p)
		return unsafe.Pointer(&kv)
	})
	return c
}
