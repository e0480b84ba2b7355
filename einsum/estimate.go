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
	"cmp"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// estimator chooses the label to join next. Join labels are ranked once per
// evaluation by the smallest number of key parts any operand holds for them,
// and then by the number of operands carrying them. Labels of equal rank are
// compared by the cardinalities of the operands at hand.
type estimator[R Number] struct {
	labels []Label
	lonely []bool
	rank   []int // -1 for lonely labels
	cards  *lru.Cache[cardKey, int]
}

func newEstimator[R Number](p *plan, sources []source[R], size int) (*estimator[R], error) {
	cards, err := lru.New[cardKey, int](size)
	if err != nil {
		return nil, fmt.Errorf("cardinality cache: %w", err)
	}
	e := &estimator[R]{labels: p.labels, lonely: p.lonely, rank: make([]int, len(p.labels)), cards: cards}
	type score struct{ label, card, operands int }
	var scores []score
	for l := range p.labels {
		e.rank[l] = -1
		if p.lonely[l] {
			continue
		}
		s := score{label: l, card: -1}
		for _, sl := range p.slots {
			t := term[R]{labels: sl.labels, src: sources[sl.index]}
			ps := t.positions(l)
			if ps == nil {
				continue
			}
			s.operands++
			if c := e.cardinality(t, ps); s.card < 0 || c < s.card {
				s.card = c
			}
		}
		scores = append(scores, s)
	}
	slices.SortStableFunc(scores, func(a, b score) int {
		if c := cmp.Compare(a.card, b.card); c != 0 {
			return c
		}
		return cmp.Compare(b.operands, a.operands)
	})
	rank := 0
	for i, s := range scores {
		if i > 0 && (s.card != scores[i-1].card || s.operands != scores[i-1].operands) {
			rank = i
		}
		e.rank[s.label] = rank
	}
	return e, nil
}

// order returns the join labels by rank.
func (e *estimator[R]) order() string {
	ids := make([]int, 0, len(e.rank))
	for l, rk := range e.rank {
		if rk >= 0 {
			ids = append(ids, l)
		}
	}
	slices.SortStableFunc(ids, func(a, b int) int { return cmp.Compare(e.rank[a], e.rank[b]) })
	order := make([]rune, len(ids))
	for i, l := range ids {
		order[i] = rune(e.labels[l])
	}
	return string(order)
}

// choose returns the label to join next among the labels of terms. It
// reports false when only lonely labels are left.
func (e *estimator[R]) choose(terms []term[R]) (int, bool, error) {
	best, bestCard := -1, -1
	pending := false
	for _, t := range terms {
		for _, l := range t.labels {
			if e.lonely[l] || l == best {
				continue
			}
			pending = true
			switch rk := e.rank[l]; {
			case rk < 0:
			case best < 0 || rk < e.rank[best]:
				best, bestCard = l, -1
			case rk == e.rank[best]:
				if bestCard < 0 {
					bestCard = e.labelCardinality(terms, best)
				}
				if c := e.labelCardinality(terms, l); c < bestCard {
					best, bestCard = l, c
				}
			}
		}
	}
	switch {
	case best >= 0:
		return best, true, nil
	case pending:
		return 0, false, fmt.Errorf("%w: labels %q", ErrNoJoinLabel, e.pending(terms))
	}
	return 0, false, nil
}

func (e *estimator[R]) pending(terms []term[R]) string {
	var labels []rune
	for _, t := range terms {
		for _, l := range t.labels {
			if !e.lonely[l] {
				labels = append(labels, rune(e.labels[l]))
			}
		}
	}
	return string(labels)
}

// labelCardinality returns the smallest cardinality of label among terms.
func (e *estimator[R]) labelCardinality(terms []term[R], label int) int {
	card := -1
	for _, t := range terms {
		if ps := t.positions(label); ps != nil {
			if c := e.cardinality(t, ps); card < 0 || c < card {
				card = c
			}
		}
	}
	return card
}

func (e *estimator[R]) cardinality(t term[R], positions []int) int {
	key, ok := t.src.cacheKey(positions)
	if !ok {
		return t.src.cardinality(positions)
	}
	if c, hit := e.cards.Get(key); hit {
		cardinalityHits.Inc()
		return c
	}
	c := t.src.cardinality(positions)
	e.cards.Add(key, c)
	return c
}
