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
	"errors"
	"fmt"

	"github.com/wdamron/hypertrie"
)

var (
	// ErrSyntax is returned for subscripts that cannot be parsed.
	ErrSyntax = errors.New("einsum: invalid subscript")
	// ErrUnboundResultLabel is returned when a result label occurs in no operand.
	ErrUnboundResultLabel = errors.New("einsum: result label not bound by any operand")
	// ErrDuplicateResultLabel is returned when a result label occurs twice.
	ErrDuplicateResultLabel = errors.New("einsum: duplicate result label")
	// ErrDepthExceeded is returned when a nested subscript has more result labels
	// than a hypertrie has positions.
	ErrDepthExceeded = errors.New("einsum: nested result exceeds the maximum depth")
	// ErrOperandCount is returned when the number of operands does not match the subscript.
	ErrOperandCount = errors.New("einsum: operand count does not match subscript")
	// ErrOperandDepth is returned when an operand's depth differs from its label count.
	ErrOperandDepth = errors.New("einsum: operand depth does not match its labels")
	// ErrNoJoinLabel signals that no label could be chosen while operands still
	// carried unbound labels. It indicates a scheduling bug, not bad input.
	ErrNoJoinLabel = errors.New("einsum: no label left for join")
	// ErrTimeout is returned when the evaluation context expired before the
	// result was complete.
	ErrTimeout = errors.New("einsum: evaluation timed out")
)

func syntaxError(pos int, format string, args ...any) error {
	return fmt.Errorf("%w: at %d: %s", ErrSyntax, pos, fmt.Sprintf(format, args...))
}

// Unbound is the key part of a result position whose label was only carried by
// an optional group without matches.
const Unbound hypertrie.KeyPart = ^hypertrie.KeyPart(0)
