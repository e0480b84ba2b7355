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
	"encoding/binary"
	"fmt"

	"github.com/wdamron/hypertrie/internal/amt"
)

// DefaultBulkSize is the number of queued entries which triggers a flush.
const DefaultBulkSize = 1 << 20

// BulkStats describes one flushed batch of a BulkInserter.
type BulkStats struct {
	Processed int // entries added since the previous flush
	Inserted  int // entries which changed the hypertrie
	SizeAfter int // size of the hypertrie after the flush
}

// BulkInserter queues entries for a hypertrie and applies them in batches.
// Entries equal to the stored ones are dropped when added, and a later entry
// for a queued key replaces the earlier one. Call Close to apply the rest.
type BulkInserter[V Value] struct {
	h         *Hypertrie[V]
	size      int
	loaded    func(BulkStats)
	pending   []Entry[V]
	index     amt.BytesMap[int] // encoded key -> index in pending
	processed int
}

// BulkOption configures a BulkInserter.
type BulkOption[V Value] func(*BulkInserter[V])

// WithBulkSize sets the number of queued entries which triggers a flush.
func WithBulkSize[V Value](n int) BulkOption[V] {
	return func(b *BulkInserter[V]) { b.size = max(n, 1) }
}

// WithBulkLoaded sets a callback invoked after each flushed batch.
func WithBulkLoaded[V Value](fn func(BulkStats)) BulkOption[V] {
	return func(b *BulkInserter[V]) { b.loaded = fn }
}

// NewBulkInserter returns a BulkInserter writing to h.
func NewBulkInserter[V Value](h *Hypertrie[V], opts ...BulkOption[V]) *BulkInserter[V] {
	b := &BulkInserter[V]{h: h, size: DefaultBulkSize, index: amt.NewBytesMap[int]()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Len returns the number of queued entries.
func (b *BulkInserter[V]) Len() int { return len(b.pending) }

// Add queues e, flushing when the batch is full.
func (b *BulkInserter[V]) Add(e Entry[V]) error {
	if len(e.Key) != b.h.depth {
		return fmt.Errorf("%w: got %d key parts for depth %d", ErrInvalidKey, len(e.Key), b.h.depth)
	}
	b.processed++
	kb := encodeKey(e.Key)
	if i, ok := b.index.Get(kb); ok {
		b.pending[i].Value = e.Value
		return nil
	}
	if stored, _ := b.h.Get(e.Key); stored == e.Value {
		return nil
	}
	b.index.Set(kb, len(b.pending))
	b.pending = append(b.pending, Entry[V]{Key: e.Key.Clone(), Value: e.Value})
	if len(b.pending) >= b.size {
		b.Flush()
	}
	return nil
}

// Flush applies the queued entries.
func (b *BulkInserter[V]) Flush() {
	if len(b.pending) == 0 {
		return
	}
	inserted := 0
	for _, e := range b.pending {
		if old := b.h.ctx.get(b.h.node(), e.Key); old == e.Value {
			continue
		}
		b.h.id = b.h.ctx.change(b.h.depth, b.h.id, e.Key, e.Value)
		inserted++
	}
	stats := BulkStats{Processed: b.processed, Inserted: inserted, SizeAfter: b.h.Size()}
	bulkFlushes.Inc()
	b.h.ctx.log.Debug("bulk loaded", "processed", stats.Processed, "inserted", stats.Inserted, "size", stats.SizeAfter)
	b.pending, b.processed = b.pending[:0], 0
	b.index = amt.NewBytesMap[int]()
	if b.loaded != nil {
		b.loaded(stats)
	}
}

// Close applies the queued entries.
func (b *BulkInserter[V]) Close() { b.Flush() }

func encodeKey(key Key) []byte {
	kb := make([]byte, 0, 8*len(key))
	for _, part := range key {
		kb = binary.BigEndian.AppendUint64(kb, part)
	}
	return kb
}
