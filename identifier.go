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

// Kind names the encoding of the node an Identifier refers to.
type Kind uint8

const (
	// KindEmpty identifies the empty hypertrie; no node backs it.
	KindEmpty Kind = iota
	// KindSingle identifies a node holding exactly one entry.
	KindSingle
	// KindFull identifies a node holding two or more entries in per-position edge tables.
	KindFull
	// KindInline identifies a single-entry boolean node of depth 1, whose key part
	// is held by the identifier itself.
	KindInline
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindSingle:
		return "single"
	case KindFull:
		return "full"
	case KindInline:
		return "inline"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Identifier names the content of a node. Nodes of equal depth and content have
// equal identifiers. The sum of a stored node combines the hashes of its entries
// with XOR, so it is independent of insertion order and can be updated one entry
// at a time. Distinct contents with equal sums are treated as equal.
type Identifier struct {
	sum  uint64
	kind Kind
}

// Kind returns the node encoding id refers to.
func (id Identifier) Kind() Kind { return id.kind }

// Empty reports whether id identifies the empty hypertrie.
func (id Identifier) Empty() bool { return id.kind == KindEmpty }

// Sum returns the combined entry hash of id, or the key part of an inline identifier.
func (id Identifier) Sum() uint64 { return id.sum }

// InlineKeyPart returns the key part held by an inline identifier.
func (id Identifier) InlineKeyPart() (KeyPart, bool) {
	return id.sum, id.kind == KindInline
}

func (id Identifier) String() string {
	if id.kind == KindEmpty {
		return "empty"
	}
	return fmt.Sprintf("%s:%016x", id.kind, id.sum)
}

func inlineID(part KeyPart) Identifier { return Identifier{sum: part, kind: KindInline} }

func fullID(sum uint64) Identifier { return Identifier{sum: sum, kind: KindFull} }
