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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBool(t *testing.T, ctx *Context[bool], depth int, keys ...Key) *Hypertrie[bool] {
	t.Helper()
	h, err := New(ctx, depth)
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, h.Set(k, true))
	}
	return h
}

func collect[V Value](v View[V]) map[string]V {
	out := make(map[string]V)
	for k, val := range v.All() {
		out[k.String()] = val
	}
	return out
}

func TestSetGet(t *testing.T) {
	ctx := NewContext[bool]()
	h := newBool(t, ctx, 3, Key{1, 2, 3}, Key{1, 2, 4}, Key{5, 2, 3})

	for _, k := range []Key{{1, 2, 3}, {1, 2, 4}, {5, 2, 3}} {
		v, err := h.Get(k)
		require.NoError(t, err)
		assert.True(t, v, "key %s", k)
	}
	v, err := h.Get(Key{1, 2, 5})
	require.NoError(t, err)
	assert.False(t, v)
	assert.Equal(t, 3, h.Size())

	require.NoError(t, h.Set(Key{1, 2, 4}, false))
	v, _ = h.Get(Key{1, 2, 4})
	assert.False(t, v)
	assert.Equal(t, 2, h.Size())

	// setting an absent key to false changes nothing
	id := h.Identifier()
	require.NoError(t, h.Set(Key{9, 9, 9}, false))
	assert.Equal(t, id, h.Identifier())
}

func TestInvalidKey(t *testing.T) {
	ctx := NewContext[bool]()
	h := newBool(t, ctx, 2, Key{1, 2})

	require.ErrorIs(t, h.Set(Key{1, 2, 3}, true), ErrInvalidKey)
	_, err := h.Get(Key{1})
	require.ErrorIs(t, err, ErrInvalidKey)
	_, _, err = h.Slice(SliceKey{Any})
	require.ErrorIs(t, err, ErrInvalidKey)
	assert.Equal(t, 1, h.Size())

	_, err = New(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidDepth)
	_, err = New(ctx, MaxDepth+1)
	require.ErrorIs(t, err, ErrInvalidDepth)
}

func TestIntValues(t *testing.T) {
	ctx := NewContext[int64]()
	h, err := New(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, h.Set(Key{1, 2}, 7))
	require.NoError(t, h.Set(Key{1, 3}, 7))
	require.NoError(t, h.Set(Key{4, 2}, 9))
	v, _ := h.Get(Key{1, 3})
	assert.Equal(t, int64(7), v)

	require.NoError(t, h.Set(Key{1, 3}, 8))
	v, _ = h.Get(Key{1, 3})
	assert.Equal(t, int64(8), v)
	assert.Equal(t, 3, h.Size())

	require.NoError(t, h.Set(Key{1, 3}, 0))
	assert.Equal(t, map[string]int64{"(1, 2)": 7, "(4, 2)": 9}, collect(h.View))
}

func TestSharedChildren(t *testing.T) {
	ctx := NewContext[int64]()
	h, err := New(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, h.Set(Key{1, 2}, 5))
	require.NoError(t, h.Set(Key{1, 3}, 5))

	// edges (·, 2) and (·, 3) both lead to the single entry (1) -> 5
	stats := ctx.Stats()
	assert.Equal(t, 1, stats.Fulls[1])
	assert.Equal(t, 1, stats.Fulls[0])
	assert.Equal(t, 1, stats.Singles[0])

	h.Close()
	assert.Equal(t, 0, ctx.Stats().Nodes())
}

func TestInlineIdentifiers(t *testing.T) {
	ctx := NewContext[bool]()
	h := newBool(t, ctx, 1, Key{42})
	part, ok := h.Identifier().InlineKeyPart()
	require.True(t, ok)
	assert.Equal(t, KeyPart(42), part)
	assert.Equal(t, 0, ctx.Stats().Nodes())

	require.NoError(t, h.Set(Key{43}, true))
	assert.Equal(t, KindFull, h.Identifier().Kind())
	require.NoError(t, h.Set(Key{42}, false))
	assert.Equal(t, KindInline, h.Identifier().Kind())
	assert.Equal(t, 0, ctx.Stats().Nodes())
}

func TestCopyOnWrite(t *testing.T) {
	ctx := NewContext[bool]()
	h := newBool(t, ctx, 3, Key{1, 2, 3}, Key{1, 2, 4}, Key{2, 2, 3})
	before := collect(h.View)

	c := h.Clone()
	require.True(t, c.Equal(h.View))
	require.NoError(t, c.Set(Key{7, 7, 7}, true))
	require.NoError(t, c.Set(Key{1, 2, 3}, false))

	assert.Equal(t, before, collect(h.View))
	assert.NotEqual(t, before, collect(c.View))
	v, _ := c.Get(Key{7, 7, 7})
	assert.True(t, v)
	v, _ = h.Get(Key{7, 7, 7})
	assert.False(t, v)

	// undoing the changes restores the shared nodes
	require.NoError(t, c.Set(Key{7, 7, 7}, false))
	require.NoError(t, c.Set(Key{1, 2, 3}, true))
	assert.True(t, c.Equal(h.View))

	c.Close()
	assert.Equal(t, before, collect(h.View))
	h.Close()
	assert.Equal(t, 0, ctx.Stats().Nodes())
}

func TestSliceSharesNodes(t *testing.T) {
	ctx := NewContext[bool]()
	h := newBool(t, ctx, 3, Key{1, 10, 20}, Key{2, 10, 20}, Key{1, 11, 3})

	s, _, err := h.Slice(SliceKey{Any, Fixed(10), Fixed(20)})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, map[string]bool{"(1)": true, "(2)": true}, collect(s.View))

	require.NoError(t, h.Set(Key{3, 10, 20}, true))
	assert.Equal(t, 2, s.Size())

	h.Close()
	assert.Equal(t, 2, s.Size())
	s.Close()
	assert.Equal(t, 0, ctx.Stats().Nodes())
}

func TestHashConsing(t *testing.T) {
	keys := []Key{{1, 2, 3}, {3, 2, 1}, {1, 1, 1}, {4, 2, 3}, {1, 5, 3}, {2, 2, 2}}
	ctx := NewContext[bool]()
	a := newBool(t, ctx, 3, keys...)
	reversed := make([]Key, len(keys))
	for i, k := range keys {
		reversed[len(keys)-1-i] = k
	}
	b := newBool(t, ctx, 3, reversed...)
	assert.Equal(t, a.Identifier(), b.Identifier())

	// identifiers do not depend on the context
	other := newBool(t, NewContext[bool](), 3, reversed...)
	assert.Equal(t, a.Identifier(), other.Identifier())

	for pos := 0; pos < 3; pos++ {
		sk := SliceKey{Any, Any, Any}
		sk[pos] = Fixed(2)
		sa, _, err := a.View.Slice(sk)
		require.NoError(t, err)
		sb, _, err := b.View.Slice(sk)
		require.NoError(t, err)
		assert.Equal(t, sa.Identifier(), sb.Identifier(), "position %d", pos)
	}

	a.Close()
	b.Close()
	assert.Equal(t, 0, ctx.Stats().Nodes())
}

func TestSlice(t *testing.T) {
	ctx := NewContext[bool]()
	h := newBool(t, ctx, 3, Key{1, 2, 3}, Key{1, 2, 4}, Key{1, 5, 3}, Key{2, 2, 3})

	t.Run("wildcard", func(t *testing.T) {
		s, _, err := h.View.Slice(SliceKey{Any, Any, Any})
		require.NoError(t, err)
		assert.True(t, s.Equal(h.View))
		assert.Equal(t, collect(h.View), collect(s))
	})
	t.Run("fixed", func(t *testing.T) {
		s, _, err := h.View.Slice(SliceKey{Fixed(1), Any, Fixed(3)})
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"(2)": true, "(5)": true}, collect(s))
	})
	t.Run("scalar", func(t *testing.T) {
		s, v, err := h.View.Slice(SliceKeyOf(Key{1, 2, 4}))
		require.NoError(t, err)
		assert.True(t, v)
		assert.Nil(t, s.Context())
		_, v, err = h.View.Slice(SliceKeyOf(Key{1, 2, 9}))
		require.NoError(t, err)
		assert.False(t, v)
	})
	t.Run("missing", func(t *testing.T) {
		s, _, err := h.View.Slice(SliceKey{Fixed(9), Any, Any})
		require.NoError(t, err)
		assert.True(t, s.Empty())
		assert.Equal(t, 2, s.Depth())
	})
	t.Run("single entry", func(t *testing.T) {
		single := newBool(t, ctx, 3, Key{7, 8, 9})
		defer single.Close()
		s, _, err := single.View.Slice(SliceKey{Any, Fixed(8), Any})
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"(7, 9)": true}, collect(s))

		owned := s.Retain()
		nodes := ctx.Stats().Nodes()
		require.NoError(t, owned.Set(Key{7, 10}, true))
		assert.Equal(t, 2, owned.Size())
		assert.Equal(t, 1, single.Size())
		owned.Close()
		assert.Equal(t, nodes-1, ctx.Stats().Nodes())
	})
}

func TestStaleView(t *testing.T) {
	ctx := NewContext[bool]()
	h := newBool(t, ctx, 2, Key{1, 2}, Key{3, 4})
	stale := h.View
	h.Close()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		_, _ = stale.Get(Key{1, 2})
	}()
	err, ok := recovered.(error)
	require.True(t, ok, "panic value %v", recovered)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssign(t *testing.T) {
	ctx := NewContext[bool]()
	a := newBool(t, ctx, 2, Key{1, 2}, Key{3, 4})
	b := newBool(t, ctx, 2, Key{5, 6})
	nodes := ctx.Stats().Nodes()

	t.Run("self", func(t *testing.T) {
		id := a.Identifier()
		require.NoError(t, a.Assign(a.View))
		assert.Equal(t, id, a.Identifier())
		assert.Equal(t, nodes, ctx.Stats().Nodes())
		assert.Equal(t, map[string]bool{"(1, 2)": true, "(3, 4)": true}, collect(a.View))
	})
	t.Run("other", func(t *testing.T) {
		require.NoError(t, b.Assign(a.View))
		assert.True(t, b.Equal(a.View))

		// b holds its own reference
		a.Close()
		assert.Equal(t, map[string]bool{"(1, 2)": true, "(3, 4)": true}, collect(b.View))
		require.NoError(t, b.Set(Key{7, 8}, true))
		assert.Equal(t, 3, b.Size())
	})
	t.Run("mismatch", func(t *testing.T) {
		shallow := newBool(t, ctx, 1, Key{1})
		defer shallow.Close()
		require.ErrorIs(t, b.Assign(shallow.View), ErrInvalidDepth)

		other := newBool(t, NewContext[bool](), 2, Key{1, 2})
		defer other.Close()
		require.ErrorIs(t, b.Assign(other.View), ErrInvalidContext)
		assert.Equal(t, 3, b.Size())
	})

	b.Close()
	assert.Equal(t, 0, ctx.Stats().Nodes())
}

func TestCardinality(t *testing.T) {
	ctx := NewContext[bool]()
	h := newBool(t, ctx, 2, Key{1, 2}, Key{1, 3}, Key{4, 1})

	assert.Equal(t, 2, h.Cardinality(0))
	assert.Equal(t, 3, h.Cardinality(1))
	assert.Equal(t, 4, h.Cardinality(0, 1))
	assert.Equal(t, 0, h.Cardinality(5))

	single := newBool(t, ctx, 3, Key{1, 1, 2})
	assert.Equal(t, 1, single.Cardinality(0, 1))
	assert.Equal(t, 2, single.Cardinality(0, 1, 2))
}

func TestRandomized(t *testing.T) {
	const N = 2000
	rng := rand.New(rand.NewSource(1))
	ctx := NewContext[int64]()
	h, err := New(ctx, 3)
	require.NoError(t, err)
	model := make(map[string]int64)
	var clones []*Hypertrie[int64]
	var snapshots []map[string]int64

	for i := 0; i < N; i++ {
		k := Key{KeyPart(rng.Intn(8)), KeyPart(rng.Intn(8)), KeyPart(rng.Intn(8))}
		v := int64(rng.Intn(4))
		require.NoError(t, h.Set(k, v))
		if v == 0 {
			delete(model, k.String())
		} else {
			model[k.String()] = v
		}
		if i%250 == 0 {
			clones = append(clones, h.Clone())
			snapshot := make(map[string]int64, len(model))
			for mk, mv := range model {
				snapshot[mk] = mv
			}
			snapshots = append(snapshots, snapshot)
		}
	}
	assert.Equal(t, model, collect(h.View))
	assert.Equal(t, len(model), h.Size())
	for i, c := range clones {
		assert.Equal(t, snapshots[i], collect(c.View), "clone %d", i)
		c.Close()
	}

	// a fresh hypertrie with the same entries has the same identifier
	fresh, err := New(ctx, 3)
	require.NoError(t, err)
	for k, v := range h.All() {
		require.NoError(t, fresh.Set(k, v))
	}
	assert.Equal(t, h.Identifier(), fresh.Identifier())

	fresh.Close()
	var keys []Key
	for k := range h.All() {
		keys = append(keys, k)
	}
	for _, k := range keys {
		require.NoError(t, h.Set(k, 0))
	}
	assert.True(t, h.Empty())
	assert.Equal(t, 0, ctx.Stats().Nodes())
}
