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

import "iter"

// Set contains a set of 64-bit keys. The zero Set is empty and read-only.
// A set value is safe to copy, and copies share their contents.
type Set struct {
	t Table[struct{}]
}

// NewSet returns an initialized set.
func NewSet() Set {
	return Set{NewTable[struct{}]()}
}

// Nil returns true if s is not initialized.
func (s Set) Nil() bool { return s.t.Nil() }

// Len returns the number of keys in s.
func (s Set) Len() int { return s.t.Len() }

// Has returns true if s contains key.
func (s Set) Has(key uint64) bool { return s.t.Has(key) }

// Add adds key to s and reports whether it was missing.
func (s Set) Add(key uint64) (added bool) {
	s.t.Mod(key, func(_ *struct{}, ok bool) { added = !ok })
	return added
}

// Del deletes key from s.
func (s Set) Del(key uint64) bool { return s.t.Del(key) }

// All ranges over the keys in s.
func (s Set) All() iter.Seq[uint64] { return s.t.Keys() }
