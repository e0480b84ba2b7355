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

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wdamron/hypertrie"
)

// tensorFile is the YAML form of a sparse tensor:
//
//	depth: 2
//	entries:
//	  - key: [1, 2]
//	    value: 3
//	  - key: [2, 2]
//
// Entries without a value hold 1.
type tensorFile struct {
	Depth   int           `yaml:"depth"`
	Entries []tensorEntry `yaml:"entries"`
}

type tensorEntry struct {
	Key   []uint64 `yaml:"key"`
	Value *float64 `yaml:"value"`
}

func loadTensor[V float64 | int](store *hypertrie.Context[V], path string) (*hypertrie.Hypertrie[V], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tensor: %w", err)
	}
	return decodeTensor(store, data, path)
}

func decodeTensor[V float64 | int](store *hypertrie.Context[V], data []byte, name string) (*hypertrie.Hypertrie[V], error) {
	var tf tensorFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("decoding tensor %s: %w", name, err)
	}
	if tf.Depth == 0 && len(tf.Entries) > 0 {
		tf.Depth = len(tf.Entries[0].Key)
	}
	h, err := hypertrie.New(store, tf.Depth)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}
	for i, e := range tf.Entries {
		value := V(1)
		if e.Value != nil {
			value = V(*e.Value)
		}
		if err := h.Set(e.Key, value); err != nil {
			h.Close()
			return nil, fmt.Errorf("tensor %s entry %d: %w", name, i, err)
		}
	}
	return h, nil
}
