// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graphutil contains a generic directed graph that works with existing graph libraries.
package graphutil

import (
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Digraph is a directed graph over nodes of type T. Edges are stored in a gonum graph where the ID of a node is
// its insertion rank, which makes all the enumerations deterministic. Digraph implements graph.Iterator, the
// interface of the algorithms of yourbasic/graph.
//
// Self loops are allowed.
type Digraph[T comparable] struct {
	g         *simple.DirectedGraph
	ids       map[T]int64
	nodes     []T
	selfLoops map[int64]bool
}

// NewDigraph returns an empty graph
func NewDigraph[T comparable]() *Digraph[T] {
	return &Digraph[T]{
		g:         simple.NewDirectedGraph(),
		ids:       map[T]int64{},
		selfLoops: map[int64]bool{},
	}
}

// AddNode adds x to the graph if is not already present, and returns its ID
func (d *Digraph[T]) AddNode(x T) int64 {
	if id, ok := d.ids[x]; ok {
		return id
	}
	id := int64(len(d.nodes))
	d.ids[x] = id
	d.nodes = append(d.nodes, x)
	d.g.AddNode(simple.Node(id))
	return id
}

// AddEdge adds the edge from x to y, adding the nodes as needed
func (d *Digraph[T]) AddEdge(x, y T) {
	xid, yid := d.AddNode(x), d.AddNode(y)
	if xid == yid {
		d.selfLoops[xid] = true
		return
	}
	d.g.SetEdge(d.g.NewEdge(simple.Node(xid), simple.Node(yid)))
}

// Has returns true if x is a node of the graph
func (d *Digraph[T]) Has(x T) bool {
	_, ok := d.ids[x]
	return ok
}

// ID returns the ID of x, and false if x is not in the graph
func (d *Digraph[T]) ID(x T) (int64, bool) {
	id, ok := d.ids[x]
	return id, ok
}

// NodeOf returns the node with ID id
func (d *Digraph[T]) NodeOf(id int64) T {
	return d.nodes[id]
}

// Nodes returns all the nodes, in insertion order
func (d *Digraph[T]) Nodes() []T {
	return slices.Clone(d.nodes)
}

// HasEdge returns true if there is an edge from x to y
func (d *Digraph[T]) HasEdge(x, y T) bool {
	xid, okx := d.ids[x]
	yid, oky := d.ids[y]
	if !okx || !oky {
		return false
	}
	if xid == yid {
		return d.selfLoops[xid]
	}
	return d.g.HasEdgeFromTo(xid, yid)
}

// Successors returns the targets of the edges from x, in insertion order
func (d *Digraph[T]) Successors(x T) []T {
	id, ok := d.ids[x]
	if !ok {
		return nil
	}
	return d.collect(id, d.g.From(id))
}

// Predecessors returns the sources of the edges to x, in insertion order
func (d *Digraph[T]) Predecessors(x T) []T {
	id, ok := d.ids[x]
	if !ok {
		return nil
	}
	return d.collect(id, d.g.To(id))
}

func (d *Digraph[T]) collect(id int64, it gonum.Nodes) []T {
	ids := d.sortedIDs(id, it)
	res := make([]T, len(ids))
	for i, x := range ids {
		res[i] = d.nodes[x]
	}
	return res
}

func (d *Digraph[T]) sortedIDs(id int64, it gonum.Nodes) []int64 {
	var ids []int64
	if d.selfLoops[id] {
		ids = append(ids, id)
	}
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	return ids
}

// Order implements the order of the graph.Iterator interface for the Digraph
func (d *Digraph[T]) Order() int {
	return len(d.nodes)
}

// Visit implements the graph.Iterator interface for the Digraph
func (d *Digraph[T]) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if v < 0 || v >= len(d.nodes) {
		return false
	}
	for _, w := range d.sortedIDs(int64(v), d.g.From(int64(v))) {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Reachable returns the set of nodes reachable from the roots, roots included
func (d *Digraph[T]) Reachable(roots []T) map[T]bool {
	reached := map[T]bool{}
	for _, root := range roots {
		id, ok := d.ids[root]
		if !ok || reached[root] {
			continue
		}
		reached[root] = true
		graph.BFS(d, int(id), func(_, w int, _ int64) {
			reached[d.nodes[w]] = true
		})
	}
	return reached
}

// StronglyConnectedComponents returns the strongly connected components of the graph
func (d *Digraph[T]) StronglyConnectedComponents() [][]T {
	var sccs [][]T
	for _, component := range graph.StrongComponents(d) {
		scc := make([]T, len(component))
		for i, v := range component {
			scc[i] = d.nodes[v]
		}
		sccs = append(sccs, scc)
	}
	return sccs
}

// Cyclic returns the nodes that belong to a cycle, in insertion order
func (d *Digraph[T]) Cyclic() []T {
	inCycle := map[int64]bool{}
	for id := range d.selfLoops {
		inCycle[id] = true
	}
	for _, component := range graph.StrongComponents(d) {
		if len(component) > 1 {
			for _, v := range component {
				inCycle[int64(v)] = true
			}
		}
	}
	var res []T
	for id, x := range d.nodes {
		if inCycle[int64(id)] {
			res = append(res, x)
		}
	}
	return res
}
