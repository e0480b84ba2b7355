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
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultCheckInterval is the number of join steps between deadline checks.
	DefaultCheckInterval = 512
	// DefaultCardinalityCacheSize bounds the memoized cardinalities of one evaluation.
	DefaultCardinalityCacheSize = 1024
)

type config struct {
	log           *slog.Logger
	tracer        trace.Tracer
	checkInterval int
	cacheSize     int
}

// Option configures an evaluation.
type Option func(*config)

// WithLogger sets the logger of an evaluation.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithTracer sets the tracer spans are started with.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) { c.tracer = tracer }
}

// WithCheckInterval sets the number of join steps between checks of the
// evaluation context. Values below 1 check at every step.
func WithCheckInterval(steps int) Option {
	return func(c *config) { c.checkInterval = max(steps, 1) }
}

// WithCardinalityCacheSize sets the number of cardinalities memoized while
// choosing join labels.
func WithCardinalityCacheSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.cacheSize = size
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		checkInterval: DefaultCheckInterval,
		cacheSize:     DefaultCardinalityCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default().With("system", "einsum")
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("einsum")
	}
	return c
}
