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
	"bytes"
	"iter"
	"unsafe"
)

// BytesMap maps byte strings to values. Key slices are retained in the map and
// must not be modified after they are added. The zero BytesMap is empty and
// read-only. A map value is safe to copy, and copies share their contents.
type BytesMap[V any] struct {
	*root
}

type byteskv[V any] struct {
	v V
	k []byte
}

// NewBytesMap returns an initialized map.
func NewBytesMap[V any]() BytesMap[V] {
	return BytesMap[V]{newRoot()}
}

// Nil returns true if m is not initialized.
func (m BytesMap[V]) Nil() bool { return m.root == nil }

// Len returns the number of values in m.
func (m BytesMap[V]) Len() int { return m.root.Len() }

// Dep returns the average (mean) depth of all values in m.
func (m BytesMap[V]) Dep() float64 { return m.root.Dep() }

// Get returns the value for key, or a zero value and false if the key is missing.
func (m BytesMap[V]) Get(key []byte) (value V, ok bool) {
	if ptr := m.Ptr(key); ptr != nil {
		value, ok = *ptr, true
	}
	return
}

// Val returns the value for key, or a zero value if the key is missing.
func (m BytesMap[V]) Val(key []byte) (value V) {
	if ptr := m.Ptr(key); ptr != nil {
		value = *ptr
	}
	return
}

// Ptr returns a pointer to the value for key, or nil if the key is missing.
func (m BytesMap[V]) Ptr(key []byte) *V {
	if m.root == nil {
		return nil
	}
	var w walk
	w.start(m.root, key)
	for w.present() {
		if !w.leaf() {
			w.descend()
			continue
		}
		if kv := (*byteskv[V])(w.item().ptr); bytes.Equal(kv.k, key) {
			return &kv.v
		}
		return nil // key mismatch
	}
	return nil // item missing
}

// Set adds or updates the value for key.
func (m BytesMap[V]) Set(key []byte, value V) {
	m.Mod(key, func(v *V, _ bool) { *v = value })
}

// Mod modifies the value for key using the mod callback. The mod callback receives
// a pointer to the existing or new value for key, and true if the key existed.
func (m BytesMap[V]) Mod(key []byte, mod func(*V, bool)) {
	var w walk
	w.start(m.root, key)
	for w.present() {
		if !w.leaf() {
			w.descend()
			continue
		}
		ckv := (*byteskv[V])(w.item().ptr)
		if bytes.Equal(ckv.k, key) { // update existing
			mod(&ckv.v, true)
			return
		}
		kv := &byteskv[V]{k: key}
		mod(&kv.v, false)
		w.split(m.root, ckv.k, link{ptr: unsafe.Pointer(kv)})
		return
	}
	kv := &byteskv[V]{k: key}
	mod(&kv.v, false)
	w.insert(m.root, link{ptr: unsafe.Pointer(kv)})
}

// Del deletes the value for key and reports whether it was present.
func (m BytesMap[V]) Del(key []byte) bool {
	if m.root == nil {
		return false
	}
	path := m.path[:0]
	var w walk
	w.start(m.root, key)
	for w.present() {
		path = append(path, pathLink{w.radix, w.l})
		if !w.leaf() {
			w.descend()
			continue
		}
		if !bytes.Equal((*byteskv[V])(w.item().ptr).k, key) { // key missing
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

// All ranges over the keys and values in m. Yielded keys must not be modified.
func (m BytesMap[V]) All() iter.Seq2[[]byte, V] {
	return func(yield func([]byte, V) bool) {
		if m.root == nil {
			return
		}
		scan(&m.link, func(item *link) bool {
			kv := (*byteskv[V])(item.ptr)
			return yield(kv.k, kv.v)
		})
	}
}
