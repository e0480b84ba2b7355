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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var liveNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "hypertrie_live_nodes",
	Help: "Number of nodes held in node storage",
}, []string{"kind", "depth"})

var nodesAllocated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hypertrie_nodes_allocated_total",
	Help: "Number of nodes allocated by node storage",
}, []string{"kind"})

var dedupHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hypertrie_dedup_hits_total",
	Help: "Number of node requests answered by an existing node with equal content",
})

var nodeClones = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hypertrie_node_clones_total",
	Help: "Number of shared nodes copied before modification",
})

var inPlaceUpdates = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hypertrie_in_place_updates_total",
	Help: "Number of unshared nodes modified in place",
})

var bulkFlushes = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hypertrie_bulk_flushes_total",
	Help: "Number of batches applied by bulk inserters",
})
