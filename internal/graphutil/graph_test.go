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

package graphutil

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mkGraph(edges map[string][]string) *Digraph[string] {
	d := NewDigraph[string]()
	keys := make([]string, 0, len(edges))
	for k := range edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, x := range keys {
		d.AddNode(x)
		for _, y := range edges[x] {
			d.AddEdge(x, y)
		}
	}
	return d
}

func TestDigraphEdges(t *testing.T) {
	d := mkGraph(map[string][]string{
		"a": {"b", "c"},
		"b": {"c"},
		"c": {"a", "c"},
	})
	if got := d.Successors("a"); !cmp.Equal(got, []string{"b", "c"}) {
		t.Errorf("successors of a: %s", cmp.Diff([]string{"b", "c"}, got))
	}
	if got := d.Predecessors("c"); !cmp.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("predecessors of c: %s", cmp.Diff([]string{"a", "b", "c"}, got))
	}
	if !d.HasEdge("c", "c") || d.HasEdge("b", "a") {
		t.Errorf("unexpected edges")
	}
	if d.Successors("z") != nil {
		t.Errorf("unknown node should not have successors")
	}
	if d.Order() != 3 || d.AddNode("b") != 1 {
		t.Errorf("nodes should be numbered in insertion order")
	}
}

func TestDigraphReachable(t *testing.T) {
	d := mkGraph(map[string][]string{
		"a": {"b"},
		"b": {},
		"c": {"d"},
		"d": {"c"},
	})
	got := d.Reachable([]string{"a"})
	if !cmp.Equal(got, map[string]bool{"a": true, "b": true}) {
		t.Errorf("reachable from a: %v", got)
	}
	got = d.Reachable([]string{"c", "a"})
	if len(got) != 4 {
		t.Errorf("all nodes should be reachable from c and a, got %v", got)
	}
}

func TestDigraphCycles(t *testing.T) {
	tests := []struct {
		name   string
		edges  map[string][]string
		cyclic []string
		sccs   int
	}{
		{"acyclic", map[string][]string{"a": {"b"}, "b": {"c"}, "c": {}}, nil, 3},
		{"self loop", map[string][]string{"a": {"a", "b"}, "b": {}}, []string{"a"}, 2},
		{"loop", map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"a"}, "d": {"a"}}, []string{"a", "b", "c"}, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := mkGraph(test.edges)
			if got := d.Cyclic(); !cmp.Equal(got, test.cyclic) {
				t.Errorf("cyclic nodes: %s", cmp.Diff(test.cyclic, got))
			}
			if got := d.StronglyConnectedComponents(); len(got) != test.sccs {
				t.Errorf("expected %d components, got %v", test.sccs, got)
			}
		})
	}
}
