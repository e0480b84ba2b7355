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

// Package amt implements hash array mapped tries keyed by 64-bit integers and byte
// strings. They back the edge tables and node storage of a hypertrie, and the
// result maps of einsum evaluation.
//
// Each trie level holds up to 16 items indexed by 4 hash bits, so the depth of a
// table is on the order of log16(N). See "Ideal Hash Trees" (Phil Bagwell, 2001).
package amt

import (
	"hash/maphash"
	"math/bits"
	"unsafe"
)

// root contains the root level of a table. Each root allocation is 512 bytes,
// typically 8 cache lines on 64-bit architectures.
type root struct {
	link
	seed  maphash.Seed
	len   uint64
	dep   uint64
	_     [3]uint64    // pad to 64-byte alignment
	items [16]link     // referenced by link
	path  [12]pathLink // scratch for traversal path during deletion
}

func newRoot() *root {
	r := &root{seed: maphash.MakeSeed()}
	r.link.ptr = unsafe.Pointer(&r.items)
	return r
}

// Len returns the number of values in r.
func (r *root) Len() int {
	if r == nil {
		return 0
	}
	return int(r.len)
}

// Dep returns the average (mean) depth of all values in r.
func (r *root) Dep() float64 {
	if r == nil || r.len == 0 {
		return 0
	}
	return float64(r.dep) / float64(r.len)
}

// link is a trie level with up to 16 items, or a leaf pointer within a level.
type link struct {
	ptr  unsafe.Pointer // *[4|8|12|16]link | leaf
	pmap uint32         // presence bits (leaf: low key bits for integer tables)
	tmap uint32         // type bits, 0 for branch and 1 for leaf (leaf: high key bits)
}

const linkSize = unsafe.Sizeof(link{})

// levelBits is the number of hash bits consumed per level; a 64-bit hash
// covers 16 levels before the key is rehashed.
const levelBits = 4

// Allocate an array of 4, 8, 12, or 16 links. Each block of 4 links is 64 bytes.
func newLinkArray(capacity uint8) unsafe.Pointer {
	switch {
	case capacity <= 4:
		return unsafe.Pointer(new([4]link))
	case capacity <= 8:
		return unsafe.Pointer(new([8]link))
	case capacity <= 12:
		return unsafe.Pointer(new([12]link))
	default:
		return unsafe.Pointer(new([16]link))
	}
}

func linkAt(ptr unsafe.Pointer, i uint8) *link {
	return (*link)(unsafe.Pointer(uintptr(ptr) + uintptr(i)*linkSize))
}

// pathLink references a branch traversed during deletion.
type pathLink struct {
	radix uint8
	*link
}

// walk tracks the position of one key while it descends through the levels of a trie.
type walk struct {
	hw    maphash.Hash
	kb    []byte
	hd    uint64
	l     *link
	d     uint8
	radix uint8
	bit   uint32
	idx   uint8
}

func (w *walk) start(r *root, kb []byte) {
	w.hw.SetSeed(r.seed)
	w.hw.Write(kb)
	w.kb, w.hd, w.l, w.d = kb, w.hw.Sum64(), &r.link, 0
	w.locate()
}

func (w *walk) locate() {
	w.radix = uint8(w.hd & 0xF)
	w.bit = uint32(1) << w.radix
	w.idx = uint8(bits.OnesCount32(w.l.pmap &^ (^uint32(0) << w.radix)))
}

// present reports whether the slot for the key is occupied at the current level.
func (w *walk) present() bool { return w.l.pmap&w.bit != 0 }

// leaf reports whether the occupied slot holds a leaf rather than a branch.
func (w *walk) leaf() bool { return w.l.tmap&w.bit != 0 }

func (w *walk) item() *link { return linkAt(w.l.ptr, w.idx) }

// descend moves into the branch at the current slot.
func (w *walk) descend() {
	w.l = w.item()
	w.d++
	if w.d%(64/levelBits) != 0 { // hash bits available
		w.hd >>= levelBits
	} else { // rehash
		w.hw.Write(w.kb)
		w.hd = w.hw.Sum64()
	}
	w.locate()
}

// insert stores a new leaf in the empty slot at the current level.
func (w *walk) insert(r *root, leaf link) {
	l, idx := w.l, w.idx
	count := uint8(bits.OnesCount32(l.pmap))
	if (count != 0 && count%4 != 0) || w.d == 0 { // array slot available
		for after := int(count) - 1; after >= int(idx); after-- {
			*linkAt(l.ptr, uint8(after+1)) = *linkAt(l.ptr, uint8(after))
		}
		*linkAt(l.ptr, idx) = leaf
	} else { // array full or empty
		src := l.ptr
		l.ptr = newLinkArray(count + 1)
		for before := uint8(0); before < idx; before++ {
			*linkAt(l.ptr, before) = *linkAt(src, before)
		}
		*linkAt(l.ptr, idx) = leaf
		for after := idx; after < count; after++ {
			*linkAt(l.ptr, after+1) = *linkAt(src, after)
		}
	}
	l.pmap |= w.bit
	l.tmap |= w.bit
	r.len++
	r.dep += uint64(w.d)
}

// split replaces the leaf at the current slot, whose key bytes are ckb, with
// branches deep enough to hold both that leaf and the new one.
func (w *walk) split(r *root, ckb []byte, leaf link) {
	item := w.item()
	var chw maphash.Hash
	chw.SetSeed(r.seed)
	for cd := uint8(0); cd <= w.d; cd += 64 / levelBits {
		chw.Write(ckb)
	}
	chd := chw.Sum64() >> (levelBits * (w.d % (64 / levelBits)))
	old := *item
	w.l.tmap &^= w.bit
	r.dep -= uint64(w.d) // conflicting key depth
	hd, d := w.hd, w.d
	for {
		d++
		if d%(64/levelBits) != 0 { // hash bits available
			hd >>= levelBits
			chd >>= levelBits
		} else { // rehash both keys
			w.hw.Write(w.kb)
			chw.Write(ckb)
			hd, chd = w.hw.Sum64(), chw.Sum64()
		}
		kbit, cbit := uint32(1)<<uint8(hd&0xF), uint32(1)<<uint8(chd&0xF)
		item.pmap = kbit | cbit
		if kbit != cbit { // non-colliding
			item.tmap = item.pmap
			item.ptr = newLinkArray(2)
			if pair := (*[2]link)(item.ptr); kbit < cbit {
				pair[0], pair[1] = leaf, old
			} else {
				pair[0], pair[1] = old, leaf
			}
			r.len++
			r.dep += uint64(d) * 2
			return
		}
		// collision at the new level
		item.tmap = 0
		item.ptr = newLinkArray(1)
		item = (*link)(item.ptr)
	}
}

// unlink removes the leaf at the current slot. path holds every level visited
// on the way down, indexed by depth.
func (w *walk) unlink(r *root, path []pathLink) {
	l, d, bit, idx := w.l, w.d, w.bit, w.idx
	l.pmap &^= bit
	l.tmap &^= bit
	r.len--
	r.dep -= uint64(d)
	path[d].link = nil
	count := uint8(bits.OnesCount32(l.pmap))
	// unlink empty branches up to the root
	for count == 0 && d != 0 {
		l.ptr = nil
		d--
		var radix uint8
		l, radix = path[d].link, path[d].radix
		path[d].link = nil
		bit, idx = uint32(1)<<radix, uint8(bits.OnesCount32(l.pmap&^(^uint32(0)<<radix)))
		l.pmap &^= bit
		l.tmap &^= bit
		count = uint8(bits.OnesCount32(l.pmap))
	}
	// shift items back
	src := l.ptr
	if count%4 == 0 && d != 0 { // reallocate smaller
		l.ptr = newLinkArray(count)
		for before := uint8(0); before < idx; before++ {
			*linkAt(l.ptr, before) = *linkAt(src, before)
		}
	}
	for after := idx; after < count; after++ {
		*linkAt(l.ptr, after) = *linkAt(src, after+1)
	}
	// replace single-leaf branches with the leaf up to the root
	for count == 1 && l.pmap == l.tmap && d != 0 {
		item := (*link)(l.ptr)
		r.dep--
		d--
		var radix uint8
		l, radix = path[d].link, path[d].radix
		path[d].link = nil
		bit, idx = uint32(1)<<radix, uint8(bits.OnesCount32(l.pmap&^(^uint32(0)<<radix)))
		l.tmap |= bit
		*linkAt(l.ptr, idx) = *item
		count = uint8(bits.OnesCount32(l.pmap))
	}
	// clear the path to prevent leaks
	for d != 0 {
		d--
		path[d].link = nil
	}
}

// scan visits every leaf below l in slot order.
func scan(l *link, do func(*link) bool) bool {
	pmap, tmap := l.pmap, l.tmap
	count := uint8(bits.OnesCount32(pmap))
	for i := uint8(0); i < count; i++ {
		bit := uint32(1) << uint8(bits.TrailingZeros32(pmap))
		item := linkAt(l.ptr, i)
		if tmap&bit != 0 {
			if !do(item) {
				return false
			}
		} else if !scan(item, do) {
			return false
		}
		pmap &^= bit
	}
	return true
}

// copyLinks copies the branch structure of src into dst, duplicating each leaf with dup.
// Capacities follow the same rounding as insert, so the copy stays mutable.
func copyLinks(dst, src *link, dup func(unsafe.Pointer) unsafe.Pointer) {
	dst.pmap, dst.tmap = src.pmap, src.tmap
	count := uint8(bits.OnesCount32(src.pmap))
	if dst.ptr == nil {
		dst.ptr = newLinkArray(count)
	}
	pmap := src.pmap
	for i := uint8(0); i < count; i++ {
		bit := uint32(1) << uint8(bits.TrailingZeros32(pmap))
		s, d := linkAt(src.ptr, i), linkAt(dst.ptr, i)
		if src.tmap&bit != 0 {
			*d = link{ptr: dup(s.ptr), pmap: s.pmap, tmap: s.tmap}
		} else {
			copyLinks(d, s, dup)
		}
		pmap &^= bit
	}
}
