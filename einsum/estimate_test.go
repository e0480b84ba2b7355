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

package einsum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdamron/hypertrie"
)

func newTestEstimator(t *testing.T, text string, views ...hypertrie.View[bool]) (*plan, []source[int], *estimator[int]) {
	t.Helper()
	p := compile(MustParse(text))
	sources := make([]source[int], len(p.slots))
	for _, sl := range p.slots {
		sources[sl.index] = trieSource[int, bool]{view: views[sl.operand.Input]}
	}
	e, err := newEstimator(p, sources, DefaultCardinalityCacheSize)
	require.NoError(t, err)
	return p, sources, e
}

func rootTerms(p *plan, sources []source[int]) []term[int] {
	var terms []term[int]
	for _, sl := range p.root.slots {
		terms = append(terms, term[int]{labels: sl.labels, src: sources[sl.index]})
	}
	return terms
}

func TestEstimatorOrder(t *testing.T) {
	ctx := hypertrie.NewContext[bool]()
	var xs, ys []hypertrie.Key
	for b := hypertrie.KeyPart(1); b <= 10; b++ {
		xs = append(xs, hypertrie.Key{1, b})
		for c := hypertrie.KeyPart(1); c <= 3; c++ {
			ys = append(ys, hypertrie.Key{b, c})
		}
	}
	x := boolView(t, ctx, 2, xs...)
	y := boolView(t, ctx, 2, ys...)

	p, sources, e := newTestEstimator(t, "ab,bc->ac", x, y)
	assert.Equal(t, "acb", e.order())

	label, ok, err := e.choose(rootTerms(p, sources))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Label('a'), p.labels[label])
}

func TestEstimatorTies(t *testing.T) {
	ctx := hypertrie.NewContext[bool]()
	// a and c rank equally behind b
	x := boolView(t, ctx, 2, hypertrie.Key{1, 1}, hypertrie.Key{2, 1}, hypertrie.Key{2, 2})
	y := boolView(t, ctx, 2, hypertrie.Key{1, 5}, hypertrie.Key{2, 6}, hypertrie.Key{2, 5})

	p, sources, e := newTestEstimator(t, "ab,bc->ac", x, y)
	assert.Equal(t, e.rank[0], e.rank[2])

	terms := rootTerms(p, sources)
	label, ok, err := e.choose(terms)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Label('b'), p.labels[label])

	// with b bound to 1, c has fewer candidates than a
	var bound []term[int]
	for _, tm := range terms {
		src, found := tm.src.fix(tm.positions(label), 1)
		require.True(t, found)
		bound = append(bound, term[int]{labels: tm.without(label), src: src})
	}
	label, ok, err = e.choose(bound)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Label('c'), p.labels[label])
}

func TestEstimatorLonely(t *testing.T) {
	ctx := hypertrie.NewContext[bool]()
	x := boolView(t, ctx, 2, hypertrie.Key{1, 2})

	p, sources, e := newTestEstimator(t, "ab->", x)
	assert.Equal(t, "", e.order())
	_, ok, err := e.choose(rootTerms(p, sources))
	require.NoError(t, err)
	assert.False(t, ok)
}
