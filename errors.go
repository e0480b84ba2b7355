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

import "errors"

var (
	// ErrInvalidKey is returned when a key or slice key does not match the depth of a hypertrie.
	ErrInvalidKey = errors.New("hypertrie: key length does not match depth")
	// ErrInvalidDepth is returned when a hypertrie depth is outside 1..MaxDepth.
	ErrInvalidDepth = errors.New("hypertrie: depth out of range")
	// ErrInvalidPosition is returned for key positions outside the depth of a hypertrie,
	// or repeated within one request.
	ErrInvalidPosition = errors.New("hypertrie: invalid key position")
	// ErrInvalidContext is returned when hypertries of different contexts are combined.
	ErrInvalidContext = errors.New("hypertrie: hypertrie belongs to another context")
	// ErrNotFound is the panic value raised when an identifier is dereferenced
	// against a context that does not hold it.
	ErrNotFound = errors.New("hypertrie: identifier not found in context")
)
