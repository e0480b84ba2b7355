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

// SlicePart is one position of a SliceKey: either a fixed key part or open.
type SlicePart struct {
	part  KeyPart
	fixed bool
}

// Any leaves a position of a SliceKey open.
var Any = SlicePart{}

// Fixed fixes a position of a SliceKey to part.
func Fixed(part KeyPart) SlicePart { return SlicePart{part: part, fixed: true} }

// Part returns the fixed key part and whether the position is fixed.
func (p SlicePart) Part() (KeyPart, bool) { return p.part, p.fixed }

// SliceKey selects the entries of a hypertrie that match every fixed position.
type SliceKey []SlicePart

// SliceKeyOf returns a fully fixed SliceKey for key.
func SliceKeyOf(key Key) SliceKey {
	sk := make(SliceKey, len(key))
	for i, part := range key {
		sk[i] = Fixed(part)
	}
	return sk
}

// FixedCount returns the number of fixed positions in sk.
func (sk SliceKey) FixedCount() int {
	var n int
	for _, p := range sk {
		if p.fixed {
			n++
		}
	}
	return n
}
