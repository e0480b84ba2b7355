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
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wdamron/hypertrie"
	"github.com/wdamron/hypertrie/einsum"
)

func main() {
	app := cli.App{
		Name:  "hypertrie",
		Usage: "evaluate einsum expressions over sparse tensors",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				EnvVars: []string{"HYPERTRIE_DEBUG"},
			},
		},
		Before: func(cctx *cli.Context) error {
			level := slog.LevelInfo
			if cctx.Bool("debug") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: []*cli.Command{
			evalCmd,
			parseCmd,
			statsCmd,
		},
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

var evalCmd = &cli.Command{
	Name:      "eval",
	Usage:     "evaluate a subscript over tensor files",
	ArgsUsage: "<tensor.yaml>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "subscript",
			Aliases:  []string{"s"},
			Usage:    "einsum subscript, e.g. \"ab,bc->ac\"",
			Required: true,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "stop the evaluation after this long and print the partial result",
			Value:   time.Minute,
			EnvVars: []string{"HYPERTRIE_TIMEOUT"},
		},
		&cli.BoolFlag{
			Name:  "float",
			Usage: "read and compute float values instead of integers",
		},
	},
	Action: func(cctx *cli.Context) error {
		sc, err := einsum.Parse(cctx.String("subscript"))
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cctx.Context, cctx.Duration("timeout"))
		defer cancel()
		if cctx.Bool("float") {
			return evaluate[float64](ctx, sc, cctx.Args().Slice())
		}
		return evaluate[int](ctx, sc, cctx.Args().Slice())
	},
}

func evaluate[V float64 | int](ctx context.Context, sc *einsum.Subscript, paths []string) error {
	store := hypertrie.NewContext[V]()
	operands := make([]hypertrie.View[V], 0, len(paths))
	for _, path := range paths {
		h, err := loadTensor(store, path)
		if err != nil {
			return err
		}
		operands = append(operands, h.View)
	}
	start := time.Now()
	m, err := einsum.ToMap[V](ctx, sc, operands)
	if err != nil && m.Len() == 0 {
		return err
	}
	type row struct {
		key   hypertrie.Key
		value V
	}
	rows := make([]row, 0, m.Len())
	for k, v := range m.All() {
		rows = append(rows, row{k, v})
	}
	slices.SortFunc(rows, func(a, b row) int { return slices.Compare(a.key, b.key) })
	for _, r := range rows {
		fmt.Printf("%s\t%v\n", formatKey(r.key), r.value)
	}
	slog.Info("evaluated", "subscript", sc, "entries", len(rows), "duration", time.Since(start))
	return err
}

func formatKey(key hypertrie.Key) string {
	parts := make([]string, len(key))
	for i, part := range key {
		if part == einsum.Unbound {
			parts[i] = "_"
		} else {
			parts[i] = fmt.Sprint(part)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

var parseCmd = &cli.Command{
	Name:      "parse",
	Usage:     "parse a subscript and print its labels",
	ArgsUsage: "<subscript>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return fmt.Errorf("expected one subscript, got %d arguments", cctx.NArg())
		}
		sc, err := einsum.Parse(cctx.Args().First())
		if err != nil {
			return err
		}
		fmt.Printf("subscript: %s\n", sc)
		fmt.Printf("operands:  %d\n", sc.OperandCount())
		fmt.Printf("semantics: %s\n", map[bool]string{false: "bag", true: "set"}[sc.Distinct])
		fmt.Printf("labels:    %s\n", labelString(sc.Labels()))
		fmt.Printf("join:      %s\n", labelString(sc.JoinLabels()))
		fmt.Printf("lonely:    %s\n", labelString(sc.LonelyLabels()))
		return nil
	},
}

func labelString(labels []einsum.Label) string {
	var b strings.Builder
	for _, l := range labels {
		b.WriteRune(rune(l))
	}
	return b.String()
}

var statsCmd = &cli.Command{
	Name:      "stats",
	Usage:     "load tensor files into one context and print node statistics",
	ArgsUsage: "<tensor.yaml>...",
	Action: func(cctx *cli.Context) error {
		store := hypertrie.NewContext[float64]()
		for _, path := range cctx.Args().Slice() {
			h, err := loadTensor(store, path)
			if err != nil {
				return err
			}
			cards := make([]string, h.Depth())
			for pos := range cards {
				cards[pos] = fmt.Sprint(h.Cardinality(pos))
			}
			fmt.Printf("%s: depth=%d size=%d root=%s cardinalities=[%s]\n",
				path, h.Depth(), h.Size(), h.Identifier(), strings.Join(cards, " "))
		}
		stats := store.Stats()
		for d := range stats.Singles {
			fmt.Printf("depth %d: single=%d full=%d\n", d+1, stats.Singles[d], stats.Fulls[d])
		}
		fmt.Printf("nodes: %d\n", stats.Nodes())
		return nil
	},
}
