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

// Package einsum evaluates Einstein-summation style expressions over hypertries.
//
// A subscript such as "ab,bc->ac" names the positions of each operand with
// labels. Positions sharing a label are joined on equal key parts, labels
// missing from the result are summed out, and the result holds one entry per
// distinct binding of the result labels:
//
//	result[a,c] = sum over b of x[a,b] * y[b,c]
//
// The arrow "-->" requests set semantics, where each result key appears once
// with value 1. Bracketed groups are left-joined, and parenthesized nested
// subscripts, optionally separated by "|" into a union, act as operands
// computed from the inputs.
package einsum

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/wdamron/hypertrie"
)

// Label names an operand position.
type Label rune

// Operand is either a plain operand, whose positions carry Labels and which
// reads input number Input, or a nested operand computed from Alternatives.
// The Labels of a nested operand are the result labels of its first alternative.
type Operand struct {
	Labels       []Label
	Input        int
	Alternatives []*Subscript
}

// Nested reports whether o is computed from nested subscripts.
func (o *Operand) Nested() bool { return len(o.Alternatives) > 0 }

// Group is a list of joined operands followed by optional groups, which are
// left-joined to it in order.
type Group struct {
	Operands []*Operand
	Optional []*Group
}

// Subscript is a parsed einsum expression.
type Subscript struct {
	Group
	Result []Label
	// Distinct selects set semantics: every result key once, with value 1.
	Distinct bool

	inputs int
	labels []Label
	lonely []Label
	join   []Label
}

// Parse parses text into a subscript.
func Parse(text string) (*Subscript, error) {
	p := &parser{src: []rune(text)}
	sc, err := p.subscript()
	if err != nil {
		return nil, err
	}
	if p.space(); p.pos < len(p.src) {
		return nil, syntaxError(p.pos, "unexpected %q", p.src[p.pos])
	}
	return sc, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) *Subscript {
	sc, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return sc
}

// OperandCount returns the number of input hypertries consumed by sc,
// including those read by nested subscripts.
func (sc *Subscript) OperandCount() int { return sc.inputs }

// Labels returns the labels of the operands of sc in order of first
// occurrence. Labels local to nested subscripts are not included.
func (sc *Subscript) Labels() []Label { return sc.labels }

// LonelyLabels returns the labels carried by exactly one operand position
// of sc and absent from its result. They are summed out without joining.
func (sc *Subscript) LonelyLabels() []Label { return sc.lonely }

// JoinLabels returns the labels of sc which are not lonely.
func (sc *Subscript) JoinLabels() []Label { return sc.join }

// Inputs returns the input numbers read by plain operands of sc and its
// nested subscripts.
func (sc *Subscript) Inputs() []int {
	var inputs []int
	sc.visit(func(op *Operand) {
		if !op.Nested() {
			inputs = append(inputs, op.Input)
		}
	})
	return inputs
}

// visit calls fn for every operand of sc, nested ones included, in input order.
func (sc *Subscript) visit(fn func(*Operand)) {
	var group func(g *Group)
	group = func(g *Group) {
		for _, op := range g.Operands {
			for _, alt := range op.Alternatives {
				alt.visit(fn)
			}
			fn(op)
		}
		for _, opt := range g.Optional {
			group(opt)
		}
	}
	group(&sc.Group)
}

// String returns sc in canonical form.
func (sc *Subscript) String() string {
	var b strings.Builder
	sc.format(&b)
	return b.String()
}

func (sc *Subscript) format(b *strings.Builder) {
	sc.Group.format(b)
	if sc.Distinct {
		b.WriteString("-->")
	} else {
		b.WriteString("->")
	}
	writeLabels(b, sc.Result)
}

func (g *Group) format(b *strings.Builder) {
	for i, op := range g.Operands {
		if i > 0 {
			b.WriteByte(',')
		}
		if !op.Nested() {
			writeLabels(b, op.Labels)
			continue
		}
		b.WriteByte('(')
		for j, alt := range op.Alternatives {
			if j > 0 {
				b.WriteByte('|')
			}
			alt.format(b)
		}
		b.WriteByte(')')
	}
	for i, opt := range g.Optional {
		if i > 0 || len(g.Operands) > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		opt.format(b)
		b.WriteByte(']')
	}
}

func writeLabels(b *strings.Builder, labels []Label) {
	for _, l := range labels {
		b.WriteRune(rune(l))
	}
}

// derive computes the label sets of sc from its operands.
func (sc *Subscript) derive() {
	counts := map[Label]int{}
	var group func(g *Group)
	group = func(g *Group) {
		for _, op := range g.Operands {
			for _, l := range op.Labels {
				if counts[l] == 0 {
					sc.labels = append(sc.labels, l)
				}
				counts[l]++
			}
		}
		for _, opt := range g.Optional {
			group(opt)
		}
	}
	group(&sc.Group)
	for _, l := range sc.labels {
		if counts[l] == 1 && !slices.Contains(sc.Result, l) {
			sc.lonely = append(sc.lonely, l)
		} else {
			sc.join = append(sc.join, l)
		}
	}
}

func (sc *Subscript) validate(start int) error {
	for i, l := range sc.Result {
		if slices.Contains(sc.Result[:i], l) {
			return fmt.Errorf("%w: %q in subscript at %d", ErrDuplicateResultLabel, rune(l), start)
		}
		if !slices.Contains(sc.labels, l) {
			return fmt.Errorf("%w: %q in subscript at %d", ErrUnboundResultLabel, rune(l), start)
		}
	}
	return nil
}

type parser struct {
	src    []rune
	pos    int
	inputs int
}

func (p *parser) space() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) peek() rune {
	if p.space(); p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) expect(r rune) error {
	if p.peek() != r {
		if p.pos == len(p.src) {
			return syntaxError(p.pos, "expected %q, got end of input", r)
		}
		return syntaxError(p.pos, "expected %q, got %q", r, p.src[p.pos])
	}
	p.pos++
	return nil
}

func reserved(r rune) bool {
	return strings.ContainsRune(",()[]|->", r) || unicode.IsSpace(r)
}

func (p *parser) labels() []Label {
	var labels []Label
	for p.pos < len(p.src) && !reserved(p.src[p.pos]) {
		labels = append(labels, Label(p.src[p.pos]))
		p.pos++
	}
	return labels
}

func (p *parser) subscript() (*Subscript, error) {
	p.space()
	start := p.pos
	sc := &Subscript{}
	first := p.inputs
	if err := p.group(&sc.Group); err != nil {
		return nil, err
	}
	if err := p.expect('-'); err != nil {
		return nil, err
	}
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		sc.Distinct = true
		p.pos++
	}
	if p.pos >= len(p.src) || p.src[p.pos] != '>' {
		return nil, syntaxError(p.pos, "expected \"->\" or \"-->\"")
	}
	p.pos++
	p.space()
	sc.Result = p.labels()
	sc.inputs = p.inputs - first
	sc.derive()
	if err := sc.validate(start); err != nil {
		return nil, err
	}
	return sc, nil
}

func (p *parser) group(g *Group) error {
	if r := p.peek(); r == '-' || r == ']' || r == 0 {
		return nil
	}
	for {
		switch r := p.peek(); {
		case r == '[':
			p.pos++
			opt := &Group{}
			if err := p.group(opt); err != nil {
				return err
			}
			if err := p.expect(']'); err != nil {
				return err
			}
			g.Optional = append(g.Optional, opt)
		case len(g.Optional) > 0:
			return syntaxError(p.pos, "operands must precede the optional groups of their group")
		case r == '(':
			op, err := p.nested()
			if err != nil {
				return err
			}
			g.Operands = append(g.Operands, op)
		default:
			at := p.pos
			labels := p.labels()
			if len(labels) == 0 {
				if at == len(p.src) {
					return syntaxError(at, "unexpected end of input")
				}
				return syntaxError(at, "unexpected %q", p.src[at])
			}
			g.Operands = append(g.Operands, &Operand{Labels: labels, Input: p.inputs})
			p.inputs++
		}
		if p.peek() != ',' {
			return nil
		}
		p.pos++
	}
}

func (p *parser) nested() (*Operand, error) {
	start := p.pos
	p.pos++ // (
	op := &Operand{Input: -1}
	for {
		alt, err := p.subscript()
		if err != nil {
			return nil, err
		}
		if len(op.Alternatives) > 0 && len(alt.Result) != len(op.Labels) {
			return nil, syntaxError(start, "union alternatives have %d and %d result labels", len(op.Labels), len(alt.Result))
		}
		if len(alt.Result) > hypertrie.MaxDepth {
			return nil, fmt.Errorf("%w: %d result labels at %d", ErrDepthExceeded, len(alt.Result), start)
		}
		if len(op.Alternatives) == 0 {
			op.Labels = alt.Result
		}
		op.Alternatives = append(op.Alternatives, alt)
		if p.peek() != '|' {
			break
		}
		p.pos++
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return op, nil
}
