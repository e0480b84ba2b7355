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

func TestBulkInserter(t *testing.T) {
	ctx := NewContext[bool]()
	h, err := New(ctx, 3)
	require.NoError(t, err)
	defer h.Close()

	var batches []BulkStats
	bi := NewBulkInserter(h, WithBulkSize[bool](10), WithBulkLoaded[bool](func(s BulkStats) {
		batches = append(batches, s)
	}))
	require.NoError(t, bi.Add(Entry[bool]{Key: Key{1, 2, 3}, Value: true}))
	require.NoError(t, bi.Add(Entry[bool]{Key: Key{1, 2, 3}, Value: true}))
	require.NoError(t, bi.Add(Entry[bool]{Key: Key{1, 4, 3}, Value: true}))
	require.NoError(t, bi.Add(Entry[bool]{Key: Key{3, 2, 3}, Value: true}))
	require.ErrorIs(t, bi.Add(Entry[bool]{Key: Key{1, 2}, Value: true}), ErrInvalidKey)
	assert.Equal(t, 3, bi.Len())
	assert.True(t, h.Empty())
	bi.Close()

	assert.Equal(t, 3, h.Size())
	for _, k := range []Key{{1, 2, 3}, {1, 4, 3}, {3, 2, 3}} {
		v, err := h.Get(k)
		require.NoError(t, err)
		assert.True(t, v, "key %s", k)
	}
	v, _ := h.Get(Key{3, 4, 3})
	assert.False(t, v)
	assert.Equal(t, []BulkStats{{Processed: 4, Inserted: 3, SizeAfter: 3}}, batches)

	// entries already stored are dropped when added
	bi = NewBulkInserter(h)
	require.NoError(t, bi.Add(Entry[bool]{Key: Key{1, 2, 3}, Value: true}))
	assert.Equal(t, 0, bi.Len())
	bi.Close()
}

func TestBulkInserterMatchesSet(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ctx := NewContext[int64]()
	bulk, err := New(ctx, 3)
	require.NoError(t, err)
	set, err := New(ctx, 3)
	require.NoError(t, err)

	flushes := 0
	bi := NewBulkInserter(bulk, WithBulkSize[int64](16), WithBulkLoaded[int64](func(s BulkStats) {
		flushes++
		assert.LessOrEqual(t, s.Inserted, 16)
		assert.Equal(t, bulk.Size(), s.SizeAfter)
	}))
	for range 200 {
		key := Key{KeyPart(rng.Intn(6)), KeyPart(rng.Intn(6)), KeyPart(rng.Intn(6))}
		value := int64(rng.Intn(4))
		require.NoError(t, set.Set(key, value))
		require.NoError(t, bi.Add(Entry[int64]{Key: key, Value: value}))
	}
	bi.Close()

	assert.Positive(t, flushes)
	assert.Equal(t, set.Identifier(), bulk.Identifier())
	assert.True(t, set.Equal(bulk.View))
	assert.Equal(t, collect(set.View), collect(bulk.View))

	bulk.Close()
	set.Close()
	assert.Equal(t, 0, ctx.Stats().Nodes())
}
