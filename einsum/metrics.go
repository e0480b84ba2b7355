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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "einsum_evaluations_total",
	Help: "Number of einsum evaluations by outcome",
}, []string{"status"})

var evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "einsum_evaluation_duration_seconds",
	Help:    "Duration of einsum evaluations",
	Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
})

var resultEntries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "einsum_result_entries_total",
	Help: "Number of result entries produced by einsum evaluations",
})

var joinSteps = promauto.NewCounter(prometheus.CounterOpts{
	Name: "einsum_join_steps_total",
	Help: "Number of labels joined during einsum evaluations",
})

var cardinalityHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "einsum_cardinality_cache_hits_total",
	Help: "Number of cardinalities answered from the per-evaluation cache",
})
