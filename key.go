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

// Package hypertrie implements sparse multi-dimensional associative arrays over
// fixed-length keys. Hypertries of the same Context share one store of
// content-addressed, reference-counted trie nodes: equal sub-tries are stored
// once, and mutation copies a node only while another hypertrie still refers to it.
package hypertrie

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// MaxDepth is the largest supported key length.
const MaxDepth = 5

// KeyPart is one position of a key.
type KeyPart = uint64

// Key is a tuple of key parts, one per position of a hypertrie.
type Key []KeyPart

// Clone returns a copy of k.
func (k Key) Clone() Key { return append(Key(nil), k...) }

// Equal reports whether k and o hold the same key parts.
func (k Key) Equal(o Key) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if k[i] != o[i] {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, part := range k {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatUint(part, 10))
	}
	b.WriteByte(')')
	return b.String()
}

// without returns a copy of k with position pos removed.
func (k Key) without(pos int) Key {
	sub := make(Key, 0, len(k)-1)
	sub = append(sub, k[:pos]...)
	return append(sub, k[pos+1:]...)
}

// Value constrains the values a hypertrie can hold. The zero value of each type
// marks an absent entry, so boolean hypertries are sets of keys.
type Value interface {
	bool | int | int64 | float64
}

// Entry is a key with its value.
type Entry[V Value] struct {
	Key   Key
	Value V
}

func isZero[V Value](v V) bool {
	var zero V
	return v == zero
}

func valueBits[V Value](v V) uint64 {
	switch x := any(v).(type) {
	case bool:
		if x {
			return 1
		}
	case int:
		return uint64(x)
	case int64:
		return uint64(x)
	case float64:
		return math.Float64bits(x)
	}
	return 0
}

// hashEntry returns the hash of one entry, the unit combined into identifiers.
func hashEntry[V Value](key Key, value V) uint64 {
	var buf [8 * (MaxDepth + 2)]byte
	b := binary.LittleEndian.AppendUint64(buf[:0], uint64(len(key)))
	for _, part := range key {
		b = binary.LittleEndian.AppendUint64(b, part)
	}
	b = binary.LittleEndian.AppendUint64(b, valueBits(value))
	return murmur3.Sum64(b)
}
