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

// plan is a subscript prepared for evaluation. Labels are numbered in order
// of first occurrence, and every operand owns a slot.
type plan struct {
	sc       *Subscript
	labels   []Label
	result   []int
	isResult []bool
	lonely   []bool
	root     *scope
	slots    []*slot
}

// scope is a group of a plan.
type scope struct {
	slots    []*slot
	optional []*scope
}

type slot struct {
	index   int
	labels  []int
	operand *Operand
}

func compile(sc *Subscript) *plan {
	p := &plan{
		sc:       sc,
		labels:   sc.labels,
		isResult: make([]bool, len(sc.labels)),
		lonely:   make([]bool, len(sc.labels)),
	}
	ids := make(map[Label]int, len(sc.labels))
	for i, l := range sc.labels {
		ids[l] = i
	}
	for _, l := range sc.lonely {
		p.lonely[ids[l]] = true
	}
	for _, l := range sc.Result {
		p.result = append(p.result, ids[l])
		p.isResult[ids[l]] = true
	}
	p.root = p.scope(&sc.Group, ids)
	return p
}

func (p *plan) scope(g *Group, ids map[Label]int) *scope {
	s := &scope{}
	for _, op := range g.Operands {
		sl := &slot{index: len(p.slots), operand: op}
		for _, l := range op.Labels {
			sl.labels = append(sl.labels, ids[l])
		}
		p.slots = append(p.slots, sl)
		s.slots = append(s.slots, sl)
	}
	for _, opt := range g.Optional {
		s.optional = append(s.optional, p.scope(opt, ids))
	}
	return s
}

// pending reports whether a result label of s or its optional groups is not bound.
func (s *scope) pending(p *plan, bound []bool) bool {
	for _, sl := range s.slots {
		for _, l := range sl.labels {
			if p.isResult[l] && !bound[l] {
				return true
			}
		}
	}
	for _, opt := range s.optional {
		if opt.pending(p, bound) {
			return true
		}
	}
	return false
}
